package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Golden reports exclude hashes and timestamps, so the rendered text is
// stable across runs and platforms.
func TestFormatTextGolden(t *testing.T) {
	g := goldie.New(t)

	for _, name := range []string{"sequential", "choice", "cycle"} {
		t.Run(name, func(t *testing.T) {
			s := loadFixture(t, name+".yaml")
			r, err := Run(context.Background(), s, Options{})
			require.NoError(t, err)
			g.Assert(t, name, []byte(r.FormatText()))
		})
	}
}
