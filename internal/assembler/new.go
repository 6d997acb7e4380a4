package assembler

type implAssembler struct{}

func New() Assembler {
	return &implAssembler{}
}
