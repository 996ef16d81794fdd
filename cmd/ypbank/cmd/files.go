package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/record"
)

var _ pflag.Value = (*codec.Format)(nil)

// readSet decodes path, or stdin when path is "-".
func readSet(cmd *cobra.Command, path string, format codec.Format) (record.Set, error) {
	c, err := format.Codec()
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	set, err := c.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// writeSet encodes set to path, or to stdout when path is empty. A file is
// only created once encoding has succeeded.
func writeSet(cmd *cobra.Command, path string, set record.Set, format codec.Format) error {
	c, err := format.Codec()
	if err != nil {
		return err
	}

	if path == "" {
		return c.Encode(cmd.OutOrStdout(), set)
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf, set); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// requireFormat rejects a format flag that was never set.
func requireFormat(name string, f codec.Format) error {
	if f == "" {
		return fmt.Errorf("--%s is required (csv, txt or binary)", name)
	}
	return nil
}
