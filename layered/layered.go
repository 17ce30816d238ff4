// Package layered chains FrameDisassembler instances to peel nested
// protocol layers off a byte stream in one pass, e.g. a CCSDS transfer
// frame wrapping a space packet wrapping an application PDU.
package layered

import "github.com/yanzhen74/apdl/frame"

// Layer names one disassembly step: run assembler over the current input,
// and if PayloadField is non-empty, that field's bytes become the next
// layer's input. An empty PayloadField marks the innermost layer; its
// disassembled fields are still retained, and the tail of that layer's input
// past its declared size, if any, becomes the application data handed back
// to the caller.
type Layer struct {
	Name         string
	Assembler    *frame.Assembler
	PayloadField string
}

// LayerResult is one layer's outcome.
type LayerResult struct {
	Name   string
	Fields []frame.NamedField
}

// Disassembler runs an ordered list of layers over one input buffer.
type Disassembler struct {
	layers []Layer
}

// New returns a disassembler over the given ordered layers.
func New(layers []Layer) *Disassembler {
	return &Disassembler{layers: append([]Layer(nil), layers...)}
}

// DisassembleLayers walks the configured layers over data, returning one
// LayerResult per layer plus whatever bytes remain after the last layer
// consumed its declared size (the application data).
func (d *Disassembler) DisassembleLayers(data []byte) ([]LayerResult, []byte, error) {
	results := make([]LayerResult, 0, len(d.layers))
	current := data
	appData := data

	for _, layer := range d.layers {
		fields, err := layer.Assembler.Disassemble(current)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, LayerResult{Name: layer.Name, Fields: fields})

		if layer.PayloadField == "" {
			table := layer.Assembler.Table()
			declaredBits, err := table.OffsetBits(table.Len())
			if err != nil {
				return nil, nil, err
			}
			declaredBytes := (declaredBits + 7) / 8
			appData = current[declaredBytes:]

			continue
		}

		payload := fieldBytes(fields, layer.PayloadField)
		current = payload
		appData = payload
	}

	return results, appData, nil
}

func fieldBytes(fields []frame.NamedField, name string) []byte {
	for _, f := range fields {
		if f.Name == name {
			return f.Bytes
		}
	}

	return nil
}
