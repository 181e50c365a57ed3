package filter

import (
	"io"

	"github.com/gubarz/pikchrmd/internal/buffer"
	"github.com/gubarz/pikchrmd/internal/config"
	"github.com/gubarz/pikchrmd/internal/parser"
)

// Inspect scans in with the same rules as Filter.Run and reports every
// diagram block it finds, without rendering anything.
func Inspect(in io.Reader, cfg *config.Config) ([]BlockInfo, error) {
	acc := buffer.New(buffer.DefaultCapacity)
	acc.MaxSize = cfg.MaxBlock

	m := &machine{
		delims:   parser.NewDelimiters(cfg.Tag),
		defaults: cfg.Defaults(),
		acc:      acc,
	}
	var inv inventory
	if err := m.run(in, &inv); err != nil {
		return inv.blocks, err
	}
	return inv.blocks, nil
}

// inventory is the blockHandler that only records blocks
type inventory struct {
	blocks []BlockInfo
}

func (inv *inventory) text([]byte) error { return nil }

func (inv *inventory) block(info BlockInfo, _ *buffer.Accumulator, _ []byte) error {
	inv.blocks = append(inv.blocks, info)
	return nil
}
