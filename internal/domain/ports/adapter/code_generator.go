package adapter

// CodeGenerator produces random fixed-length activation codes. Uniqueness is
// not its concern; callers retry on collision.
type CodeGenerator interface {
	Generate(length int) (string, error)
}
