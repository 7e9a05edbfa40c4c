package outwriter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// WriteStructure prints the repository tree. It is always JSON, compact
// unless the output mode asks for it indented.
func WriteStructure(resp schema.StructureResponse, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeStructureJSON(w, resp, cfg.Output == schema.JSONOut)
	}, "Wrote structure")
}

func writeStructureJSON(w io.Writer, resp schema.StructureResponse, indent bool) error {
	if indent {
		return writeJSON(w, resp)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
