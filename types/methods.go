package types

// Int64s
// Widens the tokens to int64, the element type of padded token tensors.
func (tokens Tokens) Int64s() []int64 {
	out := make([]int64, len(tokens))
	for idx := range tokens {
		out[idx] = int64(tokens[idx])
	}
	return out
}

// Ints
// Converts tokens to plain ints.
func (tokens Tokens) Ints() []int {
	out := make([]int, len(tokens))
	for idx := range tokens {
		out[idx] = int(tokens[idx])
	}
	return out
}

// TokensFromInts
// Converts a slice of non-negative ints into Tokens, ignoring negatives.
func TokensFromInts(ids []int) Tokens {
	tokens := make(Tokens, 0, len(ids))
	for _, id := range ids {
		if id < 0 {
			continue
		}
		tokens = append(tokens, Token(id))
	}
	return tokens
}
