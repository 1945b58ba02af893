package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOptions struct {
	Addr  string `mapstructure:"addr"`
	Level string `mapstructure:"level"`

	completed bool
}

func (o *testOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "")
	fs.StringVar(&o.Level, "level", o.Level, "")
}

func (o *testOptions) Complete() error { o.completed = true; return nil }
func (o *testOptions) Validate() error { return nil }

func TestRunFuncReceivesContext(t *testing.T) {
	opts := &testOptions{Addr: "default:1"}
	var ran bool
	a := NewApp("test", "test app",
		WithOptions(opts),
		WithRunFunc(func(ctx context.Context) error {
			ran = true
			assert.NotNil(t, ctx)
			return nil
		}),
	)
	a.Command().SetArgs([]string{})
	require.NoError(t, a.Command().Execute())
	assert.True(t, ran)
	assert.True(t, opts.completed)
}

func TestConfigFileAppliesToUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("addr: file:9\nlevel: debug\n"), 0o600))

	opts := &testOptions{Addr: "default:1", Level: "info"}
	a := NewApp("test", "test app",
		WithOptions(opts),
		WithRunFunc(func(context.Context) error { return nil }),
	)

	// addr set on the command line wins over the file; level comes from the
	// file because its flag stayed unset.
	a.Command().SetArgs([]string{"--config", file, "--addr", "cli:7"})
	require.NoError(t, a.Command().Execute())

	assert.Equal(t, "cli:7", opts.Addr)
	assert.Equal(t, "debug", opts.Level)
}

func TestWithoutConfigFlag(t *testing.T) {
	a := NewApp("test", "test app",
		WithOptions(&testOptions{}),
		WithoutConfigFlag(),
	)
	assert.Nil(t, a.Command().Flags().Lookup("config"))
}
