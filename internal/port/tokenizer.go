package port

// TokenCodec encodes text to a token stream and back. Decode(Encode(x))
// must round-trip exactly for any input the codec accepts.
type TokenCodec interface {
	Encode(text string) []int
	Decode(tokens []int) string
}
