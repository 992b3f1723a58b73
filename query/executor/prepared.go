package executor

import (
	"context"

	"github.com/katungi/drizzle-orm/query/compiler"
)

// Prepared is a statement compiled once. Executing it only binds values to
// its placeholders; the SQL text and argument order never change.
type Prepared struct {
	name     string
	session  *Session
	compiled *compiler.Compiled
}

func (p *Prepared) Name() string { return p.name }

func (p *Prepared) SQL() string { return p.compiled.Query.SQL }

// Placeholders lists the placeholder names the statement expects
func (p *Prepared) Placeholders() []string { return p.compiled.Query.Placeholders() }

// Execute binds values by placeholder name and runs the statement. Every
// placeholder needs a value.
func (p *Prepared) Execute(ctx context.Context, values map[string]interface{}) ([]map[string]interface{}, error) {
	args, err := p.compiled.Query.Bind(values)
	if err != nil {
		return nil, err
	}
	rows, err := p.session.run(ctx, p.name, p.compiled.Query.SQL, args)
	if err != nil {
		return nil, err
	}
	return Shape(p.compiled.Selection, rows)
}
