// Package proof implements the optional DRAT-style proof trace spec's §6
// "Proof trace" section describes: every added original clause and every
// learnt clause are logged as their literals followed by " 0"; every
// deletion is logged as "d " followed by the literals and " 0"; reaching
// UNSAT appends a trailing "0" line.
package proof

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/upsat/upsat/internal/sat"
)

// Writer owns the file handle backing a proof trace. It implements
// sat.ProofWriter. Per spec §7, I/O failures on trace writes are fatal to
// the trace but not to solving: Writer swallows its own write errors after
// the first one, silently becoming a no-op rather than aborting search.
type Writer struct {
	w       *bufio.Writer
	closer  io.Closer
	broken  bool
}

// New wraps w as a proof trace sink. If w also implements io.Closer (e.g.
// an *os.File), Close will close it too.
func New(w io.Writer) *Writer {
	closer, _ := w.(io.Closer)
	return &Writer{w: bufio.NewWriter(w), closer: closer}
}

func (p *Writer) writeLine(lits []sat.Literal) {
	if p.broken {
		return
	}
	for _, l := range lits {
		if _, err := p.w.WriteString(strconv.Itoa(int(signed(l)))); err != nil {
			p.broken = true
			return
		}
		if _, err := p.w.WriteString(" "); err != nil {
			p.broken = true
			return
		}
	}
	if _, err := p.w.WriteString("0\n"); err != nil {
		p.broken = true
	}
}

func signed(l sat.Literal) int {
	v := l.VarID() + 1
	if !l.IsPositive() {
		return -v
	}
	return v
}

// AddClause logs an original input clause.
func (p *Writer) AddClause(lits []sat.Literal) { p.writeLine(lits) }

// AddLearnt logs a clause learnt during search.
func (p *Writer) AddLearnt(lits []sat.Literal) { p.writeLine(lits) }

// Delete logs the removal of a clause from the database.
func (p *Writer) Delete(lits []sat.Literal) {
	if p.broken {
		return
	}
	if _, err := p.w.WriteString("d "); err != nil {
		p.broken = true
		return
	}
	p.writeLine(lits)
}

// Unsat appends the trailing "0" line the DRAT format requires on
// reaching UNSAT.
func (p *Writer) Unsat() {
	if p.broken {
		return
	}
	fmt.Fprintln(p.w, "0")
}

// Close flushes buffered output and closes the underlying writer, if any.
func (p *Writer) Close() error {
	if err := p.w.Flush(); err != nil {
		return err
	}
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
