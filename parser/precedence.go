package parser

import "github.com/lightplayer/lps/internal/token"

// Precedence order for operators, lowest first.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= ...
	TERNARY     // ? :
	LOGICALOR   // ||
	LOGICALAND  // &&
	BITOR       // |
	BITXOR      // ^
	BITAND      // &
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x ~x ++x
	POSTFIX     // x.xy x++ f(x)
)

var precedences = map[token.Type]int{
	token.ASSIGN:           ASSIGN,
	token.PLUS_EQUALS:      ASSIGN,
	token.MINUS_EQUALS:     ASSIGN,
	token.ASTERISK_EQUALS:  ASSIGN,
	token.SLASH_EQUALS:     ASSIGN,
	token.MOD_EQUALS:       ASSIGN,
	token.AMPERSAND_EQUALS: ASSIGN,
	token.BITOR_EQUALS:     ASSIGN,
	token.CARET_EQUALS:     ASSIGN,
	token.LT_LT_EQUALS:     ASSIGN,
	token.GT_GT_EQUALS:     ASSIGN,
	token.QUESTION:         TERNARY,
	token.OR:               LOGICALOR,
	token.AND:              LOGICALAND,
	token.BITOR:            BITOR,
	token.CARET:            BITXOR,
	token.AMPERSAND:        BITAND,
	token.EQ:               EQUALS,
	token.NOT_EQ:           EQUALS,
	token.LT:               LESSGREATER,
	token.LT_EQUALS:        LESSGREATER,
	token.GT:               LESSGREATER,
	token.GT_EQUALS:        LESSGREATER,
	token.LT_LT:            SHIFT,
	token.GT_GT:            SHIFT,
	token.PLUS:             SUM,
	token.MINUS:            SUM,
	token.ASTERISK:         PRODUCT,
	token.SLASH:            PRODUCT,
	token.MOD:              PRODUCT,
	token.PERIOD:           POSTFIX,
	token.PLUS_PLUS:        POSTFIX,
	token.MINUS_MINUS:      POSTFIX,
	token.LPAREN:           POSTFIX,
}
