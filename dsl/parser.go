package dsl

import "strconv"

// Parser builds a Program from DSL source text.
//
// Grounded on parser/parser.go in the teacher: single-token lookahead
// (current/peek), advanced with nextToken, each production consuming its
// own tokens and returning (node, error).
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a Parser over the given source text.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a complete program. It is the package's main entry point
// (a shorthand for NewParser(input).ParseProgram()), mirroring
// parser.parse(&str) in the original Rust source.
func Parse(input string) (*Program, error) {
	return NewParser(input).ParseProgram()
}

func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// expect consumes the current token if it has type t. The time units "ms"
// and "s" are only keywords after a sleep duration; where an identifier is
// expected they are accepted as names.
func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.current
	if t == TOKEN_IDENTIFIER && (tok.Type == TOKEN_MS || tok.Type == TOKEN_S) {
		tok.Type = TOKEN_IDENTIFIER
	}
	if tok.Type != t {
		return Token{}, newParseError(p.current.Position, "expected %s, got %s", t, p.current.Type)
	}
	p.nextToken()
	return tok, nil
}

// ParseProgram parses service_def*.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	for p.current.Type != TOKEN_EOF {
		svc, err := p.parseService()
		if err != nil {
			return nil, err
		}
		prog.Services = append(prog.Services, svc)
	}
	return prog, nil
}

// parseService parses:
//
//	service_def ← "service" identifier "{" (method_def | loop_def)* "}"
func (p *Parser) parseService() (*Service, error) {
	if _, err := p.expect(TOKEN_SERVICE); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TOKEN_IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}

	svc := &Service{Name: nameTok.Literal}
	for p.current.Type != TOKEN_RBRACE {
		switch p.current.Type {
		case TOKEN_METHOD:
			method, err := p.parseMethod()
			if err != nil {
				return nil, err
			}
			svc.Methods = append(svc.Methods, method)
		case TOKEN_LOOP:
			if svc.Loop != nil {
				return nil, newParseError(p.current.Position, "service %q declares more than one loop", svc.Name)
			}
			loop, err := p.parseLoop()
			if err != nil {
				return nil, err
			}
			svc.Loop = loop
		case TOKEN_EOF:
			return nil, newParseError(p.current.Position, "unexpected end of input inside service %q", svc.Name)
		default:
			return nil, newParseError(p.current.Position, "expected method or loop declaration, got %s", p.current.Type)
		}
	}
	if _, err := p.expect(TOKEN_RBRACE); err != nil {
		return nil, err
	}
	return svc, nil
}

// parseMethod parses:
//
//	method_def ← "method" identifier "{" statement* "}"
func (p *Parser) parseMethod() (*Method, error) {
	if _, err := p.expect(TOKEN_METHOD); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TOKEN_IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}
	method := &Method{Name: nameTok.Literal}
	for p.current.Type != TOKEN_RBRACE {
		if p.current.Type == TOKEN_EOF {
			return nil, newParseError(p.current.Position, "unexpected end of input inside method %q", method.Name)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		method.Statements = append(method.Statements, stmt)
	}
	if _, err := p.expect(TOKEN_RBRACE); err != nil {
		return nil, err
	}
	return method, nil
}

// parseLoop parses:
//
//	loop_def ← "loop" "{" statement* "}"
func (p *Parser) parseLoop() (*Loop, error) {
	if _, err := p.expect(TOKEN_LOOP); err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}
	var statements []Statement
	for p.current.Type != TOKEN_RBRACE {
		if p.current.Type == TOKEN_EOF {
			return nil, newParseError(p.current.Position, "unexpected end of input inside loop")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if _, err := p.expect(TOKEN_RBRACE); err != nil {
		return nil, err
	}
	if len(statements) != 1 {
		return nil, newParseError(p.current.Position, "loop body must contain exactly one statement, got %d", len(statements))
	}
	return &Loop{Statement: statements[0]}, nil
}

// parseStatement parses:
//
//	statement ← print_stmt | sleep_stmt | call_stmt
func (p *Parser) parseStatement() (Statement, error) {
	switch p.current.Type {
	case TOKEN_PRINT:
		return p.parsePrintOrStderr(false)
	case TOKEN_STDERR:
		return p.parsePrintOrStderr(true)
	case TOKEN_SLEEP:
		return p.parseSleep()
	case TOKEN_CALL:
		return p.parseCall()
	default:
		return nil, newParseError(p.current.Position, "expected print, stderr, sleep, or call, got %s", p.current.Type)
	}
}

// parsePrintOrStderr parses:
//
//	print_stmt ← ("print"|"stderr") string_literal ("with" array_literal)?
func (p *Parser) parsePrintOrStderr(stderr bool) (Statement, error) {
	p.nextToken() // consume 'print'/'stderr'
	msgTok, err := p.expect(TOKEN_STRING)
	if err != nil {
		return nil, err
	}

	var args []string
	if p.current.Type == TOKEN_WITH {
		p.nextToken() // consume 'with'
		args, err = p.parseArrayLiteral()
		if err != nil {
			return nil, err
		}
	}

	if stderr {
		return &Stderr{Message: msgTok.Literal, Args: args}, nil
	}
	return &Print{Message: msgTok.Literal, Args: args}, nil
}

// parseArrayLiteral parses:
//
//	array_literal ← "[" (string_literal ("," string_literal)*)? "]"
//
// The returned slice is never nil — an empty "[]" yields a non-nil,
// zero-length slice, which callers must distinguish from an absent clause.
func (p *Parser) parseArrayLiteral() ([]string, error) {
	if _, err := p.expect(TOKEN_LBRACKET); err != nil {
		return nil, err
	}
	args := []string{}
	if p.current.Type != TOKEN_RBRACKET {
		for {
			tok, err := p.expect(TOKEN_STRING)
			if err != nil {
				return nil, err
			}
			args = append(args, tok.Literal)
			if p.current.Type != TOKEN_COMMA {
				break
			}
			p.nextToken() // consume ','
		}
	}
	if _, err := p.expect(TOKEN_RBRACKET); err != nil {
		return nil, err
	}
	return args, nil
}

// parseSleep parses:
//
//	sleep_stmt ← "sleep" number time_unit  (time_unit ∈ {"ms","s"})
func (p *Parser) parseSleep() (Statement, error) {
	p.nextToken() // consume 'sleep'
	numTok, err := p.expect(TOKEN_NUMBER)
	if err != nil {
		return nil, err
	}
	amount, err := strconv.ParseUint(numTok.Literal, 10, 64)
	if err != nil {
		return nil, newParseError(numTok.Position, "invalid sleep duration %q: %v", numTok.Literal, err)
	}

	var ms uint64
	switch p.current.Type {
	case TOKEN_MS:
		ms = amount
	case TOKEN_S:
		ms = amount * 1000
	default:
		return nil, newParseError(p.current.Position, "expected time unit 'ms' or 's', got %s", p.current.Type)
	}
	p.nextToken() // consume unit

	return &Sleep{DurationMS: ms}, nil
}

// parseCall parses:
//
//	call_stmt ← "call" identifier ("." identifier)?
func (p *Parser) parseCall() (Statement, error) {
	p.nextToken() // consume 'call'
	firstTok, err := p.expect(TOKEN_IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if p.current.Type == TOKEN_DOT {
		p.nextToken() // consume '.'
		methodTok, err := p.expect(TOKEN_IDENTIFIER)
		if err != nil {
			return nil, err
		}
		return &Call{Service: firstTok.Literal, Method: methodTok.Literal}, nil
	}

	return &Call{Method: firstTok.Literal}, nil
}
