package scalar

import (
	"fmt"
	"math"

	"github.com/roach88/autotrace/internal/trace"
)

func (p *Provider) defineOps() {
	t := p.tracer

	p.Add = t.Primitive("add", binary("add", func(a, b float64) float64 { return a + b }))
	p.Sub = t.Primitive("sub", binary("sub", func(a, b float64) float64 { return a - b }))
	p.Mul = t.Primitive("mul", binary("mul", func(a, b float64) float64 { return a * b }))
	p.Div = t.Primitive("div", binary("div", func(a, b float64) float64 { return a / b }))
	p.Neg = t.Primitive("neg", unary("neg", func(a float64) float64 { return -a }))
	p.Sin = t.Primitive("sin", unary("sin", math.Sin))
	p.Cos = t.Primitive("cos", unary("cos", math.Cos))
	p.Tanh = t.Primitive("tanh", unary("tanh", math.Tanh))
	p.Exp = t.Primitive("exp", unary("exp", math.Exp))
	p.Log = t.Primitive("log", unary("log", math.Log))
	p.Pow = t.Primitive("pow", rawPow)
	p.Greater = t.NotracePrimitive("greater", func(args []any, _ trace.Kwargs) (any, error) {
		a, b, err := twoFloats("greater", args)
		if err != nil {
			return nil, err
		}
		return a > b, nil
	})

	for _, op := range []Operation{
		p.Add, p.Sub, p.Mul, p.Div, p.Neg,
		p.Sin, p.Cos, p.Tanh, p.Exp, p.Log, p.Pow,
		p.Greater,
	} {
		p.register(op)
	}

	p.defineRules()
}

func (p *Provider) defineRules() {
	r := p.rules

	r.Define("add",
		func(_ any, _ []any, _ trace.Kwargs) VJP { return identityVJP },
		func(_ any, _ []any, _ trace.Kwargs) VJP { return identityVJP },
	)
	r.Define("sub",
		func(_ any, _ []any, _ trace.Kwargs) VJP { return identityVJP },
		func(_ any, _ []any, _ trace.Kwargs) VJP {
			return func(g any) (any, error) { return p.Neg.Apply(g) }
		},
	)
	r.Define("mul",
		func(_ any, args []any, _ trace.Kwargs) VJP {
			return func(g any) (any, error) { return p.Mul.Apply(g, args[1]) }
		},
		func(_ any, args []any, _ trace.Kwargs) VJP {
			return func(g any) (any, error) { return p.Mul.Apply(g, args[0]) }
		},
	)
	r.Define("div",
		func(_ any, args []any, _ trace.Kwargs) VJP {
			return func(g any) (any, error) { return p.Div.Apply(g, args[1]) }
		},
		func(_ any, args []any, _ trace.Kwargs) VJP {
			// -g * a / b^2
			return func(g any) (any, error) {
				num, err := p.Mul.Apply(g, args[0])
				if err != nil {
					return nil, err
				}
				den, err := p.Mul.Apply(args[1], args[1])
				if err != nil {
					return nil, err
				}
				q, err := p.Div.Apply(num, den)
				if err != nil {
					return nil, err
				}
				return p.Neg.Apply(q)
			}
		},
	)
	r.Define("neg", func(_ any, _ []any, _ trace.Kwargs) VJP {
		return func(g any) (any, error) { return p.Neg.Apply(g) }
	})
	r.Define("sin", func(_ any, args []any, _ trace.Kwargs) VJP {
		return func(g any) (any, error) {
			c, err := p.Cos.Apply(args[0])
			if err != nil {
				return nil, err
			}
			return p.Mul.Apply(g, c)
		}
	})
	r.Define("cos", func(_ any, args []any, _ trace.Kwargs) VJP {
		return func(g any) (any, error) {
			s, err := p.Sin.Apply(args[0])
			if err != nil {
				return nil, err
			}
			gs, err := p.Mul.Apply(g, s)
			if err != nil {
				return nil, err
			}
			return p.Neg.Apply(gs)
		}
	})
	r.Define("tanh", func(ans any, _ []any, _ trace.Kwargs) VJP {
		// g * (1 - tanh^2)
		return func(g any) (any, error) {
			sq, err := p.Mul.Apply(ans, ans)
			if err != nil {
				return nil, err
			}
			d, err := p.Sub.Apply(1.0, sq)
			if err != nil {
				return nil, err
			}
			return p.Mul.Apply(g, d)
		}
	})
	r.Define("exp", func(ans any, _ []any, _ trace.Kwargs) VJP {
		return func(g any) (any, error) { return p.Mul.Apply(g, ans) }
	})
	r.Define("log", func(_ any, args []any, _ trace.Kwargs) VJP {
		return func(g any) (any, error) { return p.Div.Apply(g, args[0]) }
	})
	r.Define("pow", p.powBaseRule, p.powExponentRule)
}

// powBaseRule is g * n * x^(n-1). With a named exponent the derivative
// keeps the exponent named, so it stays a constant.
func (p *Provider) powBaseRule(_ any, args []any, kwargs trace.Kwargs) VJP {
	return func(g any) (any, error) {
		var n, xn1 any
		var err error
		if len(args) > 1 {
			n = args[1]
			nm1, err := p.Sub.Apply(n, 1.0)
			if err != nil {
				return nil, err
			}
			xn1, err = p.Pow.Apply(args[0], nm1)
			if err != nil {
				return nil, err
			}
		} else {
			e, err := toFloat(trace.Unwrap(kwargs["exponent"]))
			if err != nil {
				return nil, fmt.Errorf("pow: exponent: %w", err)
			}
			n = e
			xn1, err = p.Pow.Call([]any{args[0]}, trace.Kwargs{"exponent": e - 1})
			if err != nil {
				return nil, err
			}
		}
		d, err := p.Mul.Apply(n, xn1)
		if err != nil {
			return nil, err
		}
		return p.Mul.Apply(g, d)
	}
}

// powExponentRule is g * x^n * log(x), for a positional exponent.
func (p *Provider) powExponentRule(ans any, args []any, _ trace.Kwargs) VJP {
	return func(g any) (any, error) {
		lx, err := p.Log.Apply(args[0])
		if err != nil {
			return nil, err
		}
		d, err := p.Mul.Apply(ans, lx)
		if err != nil {
			return nil, err
		}
		return p.Mul.Apply(g, d)
	}
}

func identityVJP(g any) (any, error) { return g, nil }

func unary(name string, f func(float64) float64) trace.Func {
	return func(args []any, _ trace.Kwargs) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(args))
		}
		a, err := toFloat(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return f(a), nil
	}
}

func binary(name string, f func(a, b float64) float64) trace.Func {
	return func(args []any, _ trace.Kwargs) (any, error) {
		a, b, err := twoFloats(name, args)
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

func twoFloats(name string, args []any) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := toFloat(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: argument 0: %w", name, err)
	}
	b, err := toFloat(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: argument 1: %w", name, err)
	}
	return a, b, nil
}

// rawPow takes the exponent positionally or as the named operand "exponent".
func rawPow(args []any, kwargs trace.Kwargs) (any, error) {
	switch len(args) {
	case 2:
		a, b, err := twoFloats("pow", args)
		if err != nil {
			return nil, err
		}
		return math.Pow(a, b), nil
	case 1:
		e, ok := kwargs["exponent"]
		if !ok {
			return nil, fmt.Errorf("pow: missing exponent")
		}
		a, err := toFloat(args[0])
		if err != nil {
			return nil, fmt.Errorf("pow: %w", err)
		}
		b, err := toFloat(trace.Unwrap(e))
		if err != nil {
			return nil, fmt.Errorf("pow: exponent: %w", err)
		}
		return math.Pow(a, b), nil
	default:
		return nil, fmt.Errorf("pow: expected 1 or 2 arguments, got %d", len(args))
	}
}

// toFloat accepts the numeric kinds scenario files and callers produce.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
