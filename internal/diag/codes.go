package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Синтаксис: ошибки адаптера tree-sitter
	SynInfo        Code = 2000
	SynParseError  Code = 2001
	SynMissingNode Code = 2002

	// Форматирование
	FmtInfo              Code = 3000
	FmtContractViolation Code = 3001
	FmtCommentLost       Code = 3002
	FmtVerifyFailed      Code = 3003
	FmtNotFormatted      Code = 3004
	FmtLayoutOverflow    Code = 3005

	// I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Конфигурация
	CfgInfo       Code = 5000
	CfgParseError Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		SynInfo:              "Syntax information",
		SynParseError:        "Source does not parse",
		SynMissingNode:       "Parser inserted a missing token",
		FmtInfo:              "Formatting information",
		FmtContractViolation: "Node shape not covered by the meaning table",
		FmtCommentLost:       "Comment was not placed in the output",
		FmtVerifyFailed:      "Formatted output changes program meaning",
		FmtNotFormatted:      "File is not formatted",
		FmtLayoutOverflow:    "Line exceeds the configured width",
		IOLoadFileError:      "I/O load file error",
		IOWriteFileError:     "I/O write file error",
		CfgInfo:              "Configuration information",
		CfgParseError:        "Configuration file is invalid",
		ObsInfo:              "Observability information",
		ObsTimings:           "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
