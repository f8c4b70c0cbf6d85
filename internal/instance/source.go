package instance

import (
	"context"

	"binrent/internal/opt"
)

// Source is a provider of problem instances outside the API, such as a
// directory of catalog exports.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (opt.Instance, error)
}

// FileSource reads a single YAML or JSON instance file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file" }

func (s FileSource) Fetch(ctx context.Context) (opt.Instance, error) {
	if err := ctx.Err(); err != nil {
		return opt.Instance{}, err
	}
	return Load(s.Path)
}

// Generated draws an instance from Params.
type Generated struct {
	Params Params
}

func (s Generated) Name() string { return "generated" }

func (s Generated) Fetch(ctx context.Context) (opt.Instance, error) {
	if err := ctx.Err(); err != nil {
		return opt.Instance{}, err
	}
	return Generate(s.Params), nil
}
