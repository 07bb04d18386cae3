package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/roffe/pcanbus"
)

// parseFrame reads the cansend notation:
//
//	123#DEADBEEF      standard frame
//	18DAF110#0102     extended frame, more than three id digits
//	123#R             remote frame
//	123##1AABBCC      FD frame, the digit after ## holds BRS (1) and ESI (2)
func parseFrame(s string) (*pcanbus.Frame, error) {
	idPart, rest, ok := strings.Cut(s, "#")
	if !ok {
		return nil, fmt.Errorf("invalid frame %q, missing #", s)
	}
	id, err := strconv.ParseUint(idPart, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", idPart, err)
	}
	f := &pcanbus.Frame{ID: uint32(id), Extended: len(idPart) > 3}

	switch {
	case strings.HasPrefix(rest, "#"):
		rest = rest[1:]
		if rest == "" {
			return nil, fmt.Errorf("invalid FD frame %q, missing flags", s)
		}
		flags, err := strconv.ParseUint(rest[:1], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid FD flags %q: %w", rest[:1], err)
		}
		f.FD = true
		f.BRS = flags&1 != 0
		f.ESI = flags&2 != 0
		rest = rest[1:]
	case strings.EqualFold(rest, "R"):
		f.Remote = true
		return f, nil
	}

	data, err := hex.DecodeString(strings.ReplaceAll(rest, ".", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid data %q: %w", rest, err)
	}
	f.Data = data
	return f, nil
}
