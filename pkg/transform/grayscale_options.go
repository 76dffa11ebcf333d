package transform

type GrayOption func(g *Grayscaler)

func WithMethod(m GrayMethod) GrayOption {
	return func(g *Grayscaler) {
		g.method = m
	}
}
