package syntax

// Operator precedence, low to high. Quantifiers scan directly to the
// output (they already sit in postfix position, immediately after
// their operand), so only the binary operators need stack handling.
const (
	precAlternate = iota + 1
	precConcat
)

func precedence(k TokenKind) int {
	switch k {
	case KindAlternate:
		return precAlternate
	case KindConcat:
		return precConcat
	}
	return 0
}

// ToPostfix reorders an infix token stream (as produced by Parse) into
// postfix form using the shunting-yard algorithm. Precedence is
// alternation < concatenation < quantifiers, with groups forcing
// sub-expression evaluation.
//
// Parse has already validated grouping, so an unbalanced stream here
// is a translator defect, reported as ErrInternal rather than a
// pattern error.
func ToPostfix(tokens []Token) ([]Token, error) {
	output := make([]Token, 0, len(tokens))
	var ops []Token

	for _, t := range tokens {
		switch {
		case t.IsOperand(), t.IsQuantifier():
			output = append(output, t)
		case t.Kind == KindGroupOpen:
			ops = append(ops, t)
		case t.Kind == KindGroupClose:
			found := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.Kind == KindGroupOpen {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, errAt(ErrInternal, "", t.Pos)
			}
		case t.Kind == KindConcat, t.Kind == KindAlternate:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kind == KindGroupOpen || precedence(top.Kind) < precedence(t.Kind) {
					break
				}
				output = append(output, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, t)
		default:
			return nil, errAt(ErrInternal, "", t.Pos)
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Kind == KindGroupOpen {
			return nil, errAt(ErrInternal, "", top.Pos)
		}
		output = append(output, top)
	}
	return output, nil
}
