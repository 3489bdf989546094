package lexer

import (
	"bufio"
	"strconv"
	"unicode"
)

// Lexer produces one token at a time from a reader. The current token is
// exposed through CurrTok; Ident and NumVal carry the payload when CurrTok
// is TokIdentifier or TokNumber. There is no pushback: callers act on the
// current token and advance with NextToken.
type Lexer struct {
	CurrTok int
	Ident   string
	NumVal  int64
	reader  *bufio.Reader
}

// Single-character tokens (";", ",", "=", "<", "+", "-", "*", "(", ")",
// "!", "|") are returned as their character codes. Everything that spans
// more than one character gets a negative token constant.
const (
	// Lexer payload tokens
	TokIdentifier int = -1
	TokNumber     int = -2
	// TokError carries the offending lexeme in Ident. The only lexical
	// error is a constant too large for int64; anything else unrecognized
	// passes through as its character code.
	TokError int = -3

	// Keyword tokens
	TokProgram  int = -10
	TokBegin    int = -11
	TokEnd      int = -12
	TokInt      int = -13
	TokIf       int = -14
	TokThen     int = -15
	TokElse     int = -16
	TokEndIf    int = -17
	TokWhile    int = -18
	TokEndWhile int = -19
	TokInput    int = -20
	TokOutput   int = -21

	// Two-character operator tokens
	TokEqual     int = -30
	TokLessEqual int = -31

	TokEOF int = -99
)

func NewLexer(reader *bufio.Reader) *Lexer {
	l := Lexer{
		CurrTok: 0,
		Ident:   "",
		NumVal:  0,
		reader:  reader,
	}

	return &l
}

func (l *Lexer) NextToken() {
	l.CurrTok = l.parseToken()
}

func (l *Lexer) parseToken() int {
	chr, err := l.reader.ReadByte()
	if err != nil {
		return TokEOF
	}

	chr, err = l.skipWhitespace(chr, err)
	if err != nil {
		return TokEOF
	}

	// identifier/keyword token
	if l.validFirstIdentChar(chr) {
		str := string(chr)

		peek, _ := l.reader.Peek(1)
		for len(peek) > 0 && l.validIdentChar(peek[0]) {
			chr, _ = l.reader.ReadByte()
			str += string(chr)
			peek, _ = l.reader.Peek(1)
		}

		switch str {
		case "program":
			return TokProgram
		case "begin":
			return TokBegin
		case "end":
			return TokEnd
		case "int":
			return TokInt
		case "if":
			return TokIf
		case "then":
			return TokThen
		case "else":
			return TokElse
		case "endif":
			return TokEndIf
		case "while":
			return TokWhile
		case "endwhile":
			return TokEndWhile
		case "input":
			return TokInput
		case "output":
			return TokOutput
		}

		l.Ident = str
		return TokIdentifier
	}

	// Constant token
	if unicode.IsDigit(rune(chr)) {
		numStr := string(chr)

		peek, _ := l.reader.Peek(1)
		for len(peek) > 0 && unicode.IsDigit(rune(peek[0])) {
			chr, _ = l.reader.ReadByte()
			numStr += string(chr)
			peek, _ = l.reader.Peek(1)
		}

		num, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			l.Ident = numStr
			return TokError
		}
		l.NumVal = num
		return TokNumber
	}

	// == and <= fold into one token; = and < stand alone otherwise
	if chr == '=' || chr == '<' {
		peek, _ := l.reader.Peek(1)
		if len(peek) > 0 && peek[0] == '=' {
			_, _ = l.reader.ReadByte()
			if chr == '=' {
				return TokEqual
			}
			return TokLessEqual
		}
	}

	// Return other tokens as they are
	return int(chr)
}

// TokenName renders a token for error messages.
func TokenName(tok int) string {
	switch tok {
	case TokIdentifier:
		return "identifier"
	case TokNumber:
		return "constant"
	case TokError:
		return "invalid constant"
	case TokProgram:
		return `"program"`
	case TokBegin:
		return `"begin"`
	case TokEnd:
		return `"end"`
	case TokInt:
		return `"int"`
	case TokIf:
		return `"if"`
	case TokThen:
		return `"then"`
	case TokElse:
		return `"else"`
	case TokEndIf:
		return `"endif"`
	case TokWhile:
		return `"while"`
	case TokEndWhile:
		return `"endwhile"`
	case TokInput:
		return `"input"`
	case TokOutput:
		return `"output"`
	case TokEqual:
		return `"=="`
	case TokLessEqual:
		return `"<="`
	case TokEOF:
		return "end of input"
	}
	return `"` + string(rune(tok)) + `"`
}

func (l *Lexer) validIdentChar(chr byte) bool {
	return unicode.IsLetter(rune(chr)) || unicode.IsDigit(rune(chr)) || chr == '_'
}

func (l *Lexer) validFirstIdentChar(chr byte) bool {
	return unicode.IsLetter(rune(chr))
}

func (l *Lexer) skipWhitespace(chr byte, err error) (byte, error) {
	// Skip whitespace
	for unicode.IsSpace(rune(chr)) {
		chr, err = l.reader.ReadByte()
		if err != nil {
			return 0, err
		}
	}
	return chr, err
}
