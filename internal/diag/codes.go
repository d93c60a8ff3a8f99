package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Синтаксис (входной файл)
	SynInfo         Code = 2000
	SynParseFailure Code = 2001

	// Находки по `arguments`
	ArgInfo               Code = 3000
	ArgRedirected         Code = 3001
	ArgUnscopedOccurrence Code = 3002
	ArgInParameters       Code = 3003
	ArgPreambleInserted   Code = 3004

	// Ошибки I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOCacheError     Code = 4003

	// Внутренние ошибки (нарушение контрактов)
	IntInfo            Code = 5000
	IntEditOverlap     Code = 5001
	IntScopeUnbalanced Code = 5002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		SynInfo:               "Syntax information",
		SynParseFailure:       "Failed to parse input",
		ArgInfo:               "Arguments information",
		ArgRedirected:         "'arguments' redirected to the materialized copy",
		ArgUnscopedOccurrence: "'arguments' used outside of any function",
		ArgInParameters:       "'arguments' used in a parameter list cannot be materialized",
		ArgPreambleInserted:   "materialization preamble inserted",
		IOLoadFileError:       "I/O load file error",
		IOWriteFileError:      "I/O write file error",
		IOCacheError:          "Result cache error",
		IntInfo:               "Internal information",
		IntEditOverlap:        "Overlapping edits issued",
		IntScopeUnbalanced:    "Scope stack out of balance",
		ObsInfo:               "Observability information",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ARG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("INT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
