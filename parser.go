package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse turns formula text into a typed expression tree. A leading '=' is
// accepted but not required. Numeric literals, including scientific
// notation, parse into exact decimals with no float64 round trip. The
// parser inserts explicit coercion nodes wherever an untyped operand
// meets a typed operation, so the resulting tree always satisfies the
// operand-kind invariants of the node constructors.
func Parse(text string) (Expr, error) {
	tokens, lexErr := NewLexer(text).Tokenize()
	if lexErr != nil {
		return nil, lexErr
	}

	p := &parser{tokens: tokens}

	// optional formula prefix
	if p.peek().Type == TokenEquals {
		p.pos++
	}

	node, err := p.parseCompare()
	if err != nil {
		return nil, err
	}

	if p.peek().Type != TokenEOF {
		return nil, errUnexpectedToken(p.peek().Value)
	}
	return node, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	p.pos++
	return tok
}

// parseCompare handles comparison operators (lowest precedence)
func (p *parser) parseCompare() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenBinaryOp {
		var op CmpOp
		switch p.peek().Value {
		case "=":
			op = OpEq
		case "<>":
			op = OpNe
		case "<":
			op = OpLt
		case "<=":
			op = OpLe
		case ">":
			op = OpGt
		case ">=":
			op = OpGe
		default:
			return left, nil
		}
		p.pos++

		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &Compare{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseConcat handles the & text concatenation operator
func (p *parser) parseConcat() (Expr, error) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenBinaryOp && p.peek().Value == "&" {
		p.pos++
		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		left = &Concat{Left: textOperand(left), Right: textOperand(right)}
	}

	return left, nil
}

// parseAddition handles addition and subtraction
func (p *parser) parseAddition() (Expr, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenBinaryOp {
		var op ArithOp
		switch p.peek().Value {
		case "+":
			op = OpAdd
		case "-":
			op = OpSub
		default:
			return left, nil
		}
		p.pos++

		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &Arith{Op: op, Left: numOperand(left), Right: numOperand(right)}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *parser) parseMultiplication() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenBinaryOp {
		var op ArithOp
		switch p.peek().Value {
		case "*":
			op = OpMul
		case "/":
			op = OpDiv
		default:
			return left, nil
		}
		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Arith{Op: op, Left: numOperand(left), Right: numOperand(right)}
	}

	return left, nil
}

// parseUnary handles prefix + and -
func (p *parser) parseUnary() (Expr, error) {
	if p.peek().Type == TokenUnaryPrefixOp {
		op := p.next().Value
		operand, err := p.parseUnary() // recurse for chained unary operators
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return &Neg{Operand: numOperand(operand)}, nil
		}
		// unary plus is the identity and leaves no mark on the tree
		return operand, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles literals, references, function calls and
// parenthesized expressions
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()

	switch tok.Type {
	case TokenNumber:
		p.pos++
		d, err := decimal.NewFromString(tok.Value)
		if err != nil {
			return nil, errUnexpectedToken(tok.Value)
		}
		return &Number{Value: d}, nil

	case TokenString:
		p.pos++
		return &Text{Value: tok.Value}, nil

	case TokenBoolean:
		p.pos++
		return &Bool{Value: tok.Value == "TRUE"}, nil

	case TokenCell:
		p.pos++
		sheet, rest := splitSheetRef(tok.Value)
		ref, err := ParseRef(rest)
		if err != nil {
			return nil, errUnexpectedToken(tok.Value)
		}
		return &CellRef{Sheet: sheet, Ref: ref}, nil

	case TokenRange:
		p.pos++
		loc, err := parseRangeLocText(tok.Value)
		if err != nil {
			return nil, err
		}
		return &RangeRef{Loc: loc}, nil

	case TokenFunction:
		return p.parseCall()

	case TokenLeftParen:
		p.pos++
		node, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		if p.peek().Type != TokenRightParen {
			return nil, errUnbalanced("unbalanced parentheses: missing closing parenthesis")
		}
		p.pos++
		return node, nil

	case TokenEOF:
		return nil, errUnexpectedToken("end of formula")

	default:
		return nil, errUnexpectedToken(tok.Value)
	}
}

// parseCall parses NAME(args...) and validates the argument list against
// the function's declared arity and ArgSpec before building the node.
func (p *parser) parseCall() (Expr, error) {
	name := p.next().Value

	if p.peek().Type != TokenLeftParen {
		return nil, errUnexpectedToken(p.peek().Value)
	}
	p.pos++

	var args []Expr
	if p.peek().Type == TokenRightParen {
		p.pos++
	} else {
		for {
			arg, err := p.parseCompare()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type == TokenRightParen {
				p.pos++
				break
			}
			if p.peek().Type != TokenComma {
				return nil, errUnexpectedToken(p.peek().Value)
			}
			p.pos++
		}
	}

	spec, ok := LookupFunction(name)
	if !ok {
		return nil, errUnknownFunction(name)
	}
	if err := spec.Arity.check(name, len(args)); err != nil {
		return nil, err
	}
	if err := validateArgs(spec, args); err != nil {
		return nil, err
	}

	// IF becomes the conditional tree node so only the selected branch
	// is ever forced. A missing else branch defaults to FALSE.
	if spec.Name == "IF" {
		elseBranch := Expr(&Bool{Value: false})
		if len(args) == 3 {
			elseBranch = args[2]
		}
		return &If{Cond: boolOperand(args[0]), Then: args[1], Else: elseBranch}, nil
	}

	// a known aggregator over exactly one range becomes the dedicated
	// range-aggregate node
	if isAggregator(spec.Name) && len(args) == 1 {
		if rr, ok := args[0].(*RangeRef); ok {
			return &Agg{Name: spec.Name, Loc: rr.Loc}, nil
		}
	}

	return &Call{Name: spec.Name, Args: args}, nil
}

// validateArgs runs the function's ArgSpec over the argument list and
// rejects any unconsumed remainder.
func validateArgs(spec *FuncSpec, args []Expr) error {
	_, rest, err := spec.Args.parse(spec.Name, 0, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return errInvalidArgs(spec.Name, len(args)-len(rest), "end of arguments", describeExpr(rest[0]))
	}
	return nil
}

// splitSheetRef splits "Sheet2!A1" or "'My Sheet'!A1:B2" into the sheet
// name (quotes stripped, doubled quotes unescaped) and the reference
// text. A reference with no sheet prefix returns an empty sheet name.
func splitSheetRef(s string) (sheet, rest string) {
	if strings.HasPrefix(s, "'") {
		for i := 1; i < len(s); i++ {
			if s[i] != '\'' {
				continue
			}
			if i+1 < len(s) && s[i+1] == '\'' {
				i++ // doubled quote inside the name
				continue
			}
			name := strings.ReplaceAll(s[1:i], "''", "'")
			return name, s[i+2:] // skip the closing quote and the !
		}
		return "", s
	}
	if idx := strings.Index(s, "!"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return "", s
}

// parseRangeLocText parses a range token such as "A1:B2", "A:C" or
// "Sheet2!A1:B10" into a RangeLoc.
func parseRangeLocText(s string) (RangeLoc, error) {
	sheet, rest := splitSheetRef(s)

	colon := strings.Index(rest, ":")
	if colon < 0 {
		return RangeLoc{}, errUnexpectedToken(s)
	}
	first, second := rest[:colon], rest[colon+1:]

	if isCellText(first) && isCellText(second) {
		a, err := ParseRef(first)
		if err != nil {
			return RangeLoc{}, errUnexpectedToken(s)
		}
		b, err := ParseRef(second)
		if err != nil {
			return RangeLoc{}, errUnexpectedToken(s)
		}
		return RangeLoc{SheetName: sheet, Range: NewRange(a, b)}, nil
	}

	if isLetters(first) && isLetters(second) {
		a, ok1 := columnIndex(first)
		b, ok2 := columnIndex(second)
		if !ok1 || !ok2 {
			return RangeLoc{}, errUnexpectedToken(s)
		}
		return RangeLoc{SheetName: sheet, Range: ColumnRange(a, b)}, nil
	}

	return RangeLoc{}, errUnexpectedToken(s)
}
