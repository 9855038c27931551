package heli

// Pad is the reserved boundary marker prepended and appended to a
// token before character n-grams are extracted (§4.2, Glossary
// "Padded token").
const Pad = '#'

// PaddedRunes returns the rune sequence of token wrapped in boundary
// markers, e.g. "cat" -> ['#','c','a','t','#']. N-grams are extracted
// over runes, not bytes, so multi-byte scripts (Cyrillic, CJK, ...)
// are never split mid-character.
func PaddedRunes(token string) []rune {
	rs := []rune(token)
	padded := make([]rune, 0, len(rs)+2)
	padded = append(padded, Pad)
	padded = append(padded, rs...)
	padded = append(padded, Pad)
	return padded
}

// NumNgrams returns K_n, the number of order-n substrings present in a
// padded rune sequence of the given length (§4.5.a). Zero if n is
// larger than the padded length.
func NumNgrams(paddedLen, n int) int {
	k := paddedLen - n + 1
	if k < 0 {
		return 0
	}
	return k
}

// EachNgram calls fn once for every order-n substring of padded, left
// to right, and returns K_n. The extractor is lazy: it never
// materializes the full list of n-grams across all orders, only the
// ones a caller actually asks for at a given order (§4.2).
func EachNgram(padded []rune, n int, fn func(ngram string)) int {
	k := NumNgrams(len(padded), n)
	for i := 0; i < k; i++ {
		fn(string(padded[i : i+n]))
	}
	return k
}

// EachToken calls fn once per whitespace-separated token of a
// preprocessed string, in order. Each token doubles as its own word
// key (§4.2 "Emit each token as a word key").
func EachToken(preprocessed string, fn func(token string)) {
	for _, t := range Tokens(preprocessed) {
		fn(t)
	}
}
