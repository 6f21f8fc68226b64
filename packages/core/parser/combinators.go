package parser

// parseFunc is a parser over a Reader. Parsers that fail recoverably
// leave the reader exactly where they found it.
type parseFunc[T any] func(r *Reader) (T, *Error)

// choice tries each parser in order from the same start state. A
// recoverable failure restores the reader and moves on to the next
// alternative; a fatal failure propagates immediately. The last parser
// runs unguarded, so when every alternative fails recoverably the
// caller sees the last parser's error.
func choice[T any](r *Reader, parsers ...parseFunc[T]) (T, *Error) {
	for i, p := range parsers {
		if i == len(parsers)-1 {
			break
		}
		start := r.State()
		v, err := p(r)
		if err == nil || !err.Recoverable {
			return v, err
		}
		r.Restore(start)
	}
	return parsers[len(parsers)-1](r)
}

// optional runs p and treats a recoverable failure as absence,
// restoring the reader. Fatal failures propagate.
func optional[T any](r *Reader, p parseFunc[T]) (T, *Error) {
	start := r.State()
	v, err := p(r)
	if err == nil {
		return v, nil
	}
	var zero T
	if err.Recoverable {
		r.Restore(start)
		return zero, nil
	}
	return zero, err
}

// zeroOrMore applies p greedily. A recoverable failure ends the loop
// with the reader restored to just after the last success.
func zeroOrMore[T any](r *Reader, p parseFunc[T]) ([]T, *Error) {
	var items []T
	for {
		start := r.State()
		if r.EOF() {
			return items, nil
		}
		v, err := p(r)
		if err != nil {
			if err.Recoverable {
				r.Restore(start)
				return items, nil
			}
			return nil, err
		}
		items = append(items, v)
	}
}

func oneOrMore[T any](r *Reader, p parseFunc[T]) ([]T, *Error) {
	first, err := p(r)
	if err != nil {
		return nil, err
	}
	rest, err := zeroOrMore(r, p)
	if err != nil {
		return nil, err
	}
	return append([]T{first}, rest...), nil
}

// nonrecover runs p and upgrades a recoverable failure to fatal. Used
// where the grammar has committed to a branch.
func nonrecover[T any](r *Reader, p parseFunc[T]) (T, *Error) {
	v, err := p(r)
	if err != nil && err.Recoverable {
		return v, err.ToFatal()
	}
	return v, err
}
