package parsec

// Then runs pa followed by pb and combines both results.
func Then[A, B, C any](pa Parser[A], pb Parser[B], combine func(A, B) C) Parser[C] {
	return func(c Cursor) (C, Cursor, *Failure) {
		var zero C
		a, next, fail := pa(c)
		if fail != nil {
			return zero, c, fail
		}
		b, next, fail := pb(next)
		if fail != nil {
			return zero, c, fail
		}
		return combine(a, b), next, nil
	}
}

// Left runs both parsers and keeps the result of the first.
func Left[A, B any](pa Parser[A], pb Parser[B]) Parser[A] {
	return Then(pa, pb, func(a A, _ B) A { return a })
}

// Right runs both parsers and keeps the result of the second.
func Right[A, B any](pa Parser[A], pb Parser[B]) Parser[B] {
	return Then(pa, pb, func(_ A, b B) B { return b })
}

// Seq runs parsers in order and collects their results.
func Seq[T any](ps ...Parser[T]) Parser[[]T] {
	return func(c Cursor) ([]T, Cursor, *Failure) {
		out := make([]T, 0, len(ps))
		next := c
		for _, p := range ps {
			v, n, fail := p(next)
			if fail != nil {
				return nil, c, fail
			}
			out = append(out, v)
			next = n
		}
		return out, next, nil
	}
}

// Or tries each alternative from the same starting cursor and returns the
// first success. A fatal failure stops the search immediately. When every
// alternative fails, the failure that reached furthest is reported.
func Or[T any](ps ...Parser[T]) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		var zero T
		var best *Failure
		for _, p := range ps {
			v, next, fail := p(c)
			if fail == nil {
				return v, next, nil
			}
			if fail.Fatal {
				return zero, c, fail
			}
			best = furthest(best, fail)
		}
		if best == nil {
			best = Expected(c)
		}
		return zero, c, best
	}
}

// OneOf matches the first literal that applies. Longer literals sharing a
// prefix must come first.
func OneOf(lits ...string) Parser[string] {
	ps := make([]Parser[string], len(lits))
	for i, lit := range lits {
		ps[i] = String(lit)
	}
	return Or(ps...)
}

// Many applies p zero or more times. Repetition stops at the first
// recoverable failure or at a success that consumed nothing.
func Many[T any](p Parser[T]) Parser[[]T] {
	return func(c Cursor) ([]T, Cursor, *Failure) {
		var out []T
		cur := c
		for {
			v, next, fail := p(cur)
			if fail != nil {
				if fail.Fatal {
					return nil, c, fail
				}
				return out, cur, nil
			}
			if next.Offset() == cur.Offset() {
				return out, cur, nil
			}
			out = append(out, v)
			cur = next
		}
	}
}

// Many1 is Many requiring at least one match.
func Many1[T any](p Parser[T]) Parser[[]T] {
	return Then(p, Many(p), func(first T, rest []T) []T {
		return append([]T{first}, rest...)
	})
}

// Map transforms a successful result.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(c Cursor) (B, Cursor, *Failure) {
		var zero B
		a, next, fail := p(c)
		if fail != nil {
			return zero, c, fail
		}
		return f(a), next, nil
	}
}

// MapErr transforms a successful result; an error from f becomes a fatal
// failure at the start of the match.
func MapErr[A, B any](p Parser[A], f func(A) (B, error)) Parser[B] {
	return func(c Cursor) (B, Cursor, *Failure) {
		var zero B
		a, next, fail := p(c)
		if fail != nil {
			return zero, c, fail
		}
		b, err := f(a)
		if err != nil {
			return zero, c, Fatalf(c, "%s", err.Error())
		}
		return b, next, nil
	}
}

// Filter fails recoverably at the start of the match when pred rejects
// p's result.
func Filter[T any](p Parser[T], pred func(T) bool, label string) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		v, next, fail := p(c)
		if fail != nil {
			return v, c, fail
		}
		if !pred(v) {
			var zero T
			return zero, c, Expected(c, label)
		}
		return v, next, nil
	}
}

// Lazy defers building a parser until it runs, which lets grammar rules
// refer to each other.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		return build()(c)
	}
}

// Optional returns fallback when p fails recoverably.
func Optional[T any](p Parser[T], fallback T) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		v, next, fail := p(c)
		if fail != nil {
			if fail.Fatal {
				return fallback, c, fail
			}
			return fallback, c, nil
		}
		return v, next, nil
	}
}

// SepBy matches zero or more p separated by sep. Once a separator is
// consumed the following element is mandatory.
func SepBy[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	rest := Many(Right(sep, Cut(p)))
	return func(c Cursor) ([]T, Cursor, *Failure) {
		first, next, fail := p(c)
		if fail != nil {
			if fail.Fatal {
				return nil, c, fail
			}
			return nil, c, nil
		}
		tail, next, fail := rest(next)
		if fail != nil {
			return nil, c, fail
		}
		return append([]T{first}, tail...), next, nil
	}
}

// Skip runs p and then discards whatever skip matches.
func Skip[T, S any](p Parser[T], skip Parser[S]) Parser[T] {
	return Left(p, skip)
}

// SurroundedBy matches pad, p, pad and keeps p's result.
func SurroundedBy[T, S any](p Parser[T], pad Parser[S]) Parser[T] {
	return Right(pad, Left(p, pad))
}

// Between matches open, p, close and keeps p's result.
func Between[O, T, C any](open Parser[O], p Parser[T], close Parser[C]) Parser[T] {
	return Right(open, Left(p, close))
}

// NotFollowedBy succeeds with p's result only if q does not match right
// after it. Otherwise it fails recoverably at the original position.
func NotFollowedBy[T, S any](p Parser[T], q Parser[S], label string) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		var zero T
		v, next, fail := p(c)
		if fail != nil {
			return zero, c, fail
		}
		if _, _, qFail := q(next); qFail == nil {
			return zero, c, Expected(c, label)
		}
		return v, next, nil
	}
}

// Cut commits to p: any failure it reports becomes fatal.
func Cut[T any](p Parser[T]) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		v, next, fail := p(c)
		if fail != nil && !fail.Fatal {
			committed := *fail
			committed.Fatal = true
			return v, c, &committed
		}
		return v, next, fail
	}
}

// Label renames what p expects when it fails without consuming input.
func Label[T any](p Parser[T], name string) Parser[T] {
	return func(c Cursor) (T, Cursor, *Failure) {
		v, next, fail := p(c)
		if fail != nil && !fail.Fatal && fail.Pos.Offset() == c.Offset() && fail.Message == "" {
			return v, c, Expected(c, name)
		}
		return v, next, fail
	}
}

// ChainLeft parses operand (op operand)* and folds the results
// left-associatively. The operand after an operator is mandatory.
func ChainLeft[T, O any](operand Parser[T], op Parser[O], combine func(T, O, T) T) Parser[T] {
	type step struct {
		op  O
		rhs T
	}
	tail := Many(Then(op, Cut(operand), func(o O, rhs T) step { return step{op: o, rhs: rhs} }))
	return Then(operand, tail, func(first T, steps []step) T {
		acc := first
		for _, s := range steps {
			acc = combine(acc, s.op, s.rhs)
		}
		return acc
	})
}
