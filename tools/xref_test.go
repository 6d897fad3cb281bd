package tools

import (
	"strings"
	"testing"
)

func TestXRef_DefinitionAndBranch(t *testing.T) {
	source := `
_start:	addi x5, x0, 10
		beq x5, x0, done
		j _start
done:	halt
	`

	symbols := NewXRefGenerator().Generate(source)

	start, ok := symbols["_start"]
	if !ok {
		t.Fatal("expected _start symbol")
	}
	if start.Definition == nil || start.Definition.Line != 2 {
		t.Errorf("expected _start defined at line 2, got %+v", start.Definition)
	}
	if len(start.References) != 1 || start.References[0].Type != RefBranch {
		t.Errorf("expected one branch reference to _start, got %+v", start.References)
	}

	done, ok := symbols["done"]
	if !ok {
		t.Fatal("expected done symbol")
	}
	if len(done.References) != 1 || done.References[0].Type != RefBranch {
		t.Errorf("expected one branch reference to done, got %+v", done.References)
	}
}

func TestXRef_CallMarksFunction(t *testing.T) {
	source := `
_start:	call add_one
		halt
add_one:
		addi x5, x5, 1
		ret
	`

	gen := NewXRefGenerator()
	gen.Generate(source)

	functions := gen.GetFunctions()
	if len(functions) != 1 || functions[0].Name != "add_one" {
		t.Errorf("expected add_one to be the only function, got %+v", functions)
	}
}

func TestXRef_UndefinedSymbol(t *testing.T) {
	source := `
_start:	j missing
	`

	gen := NewXRefGenerator()
	gen.Generate(source)

	undefined := gen.GetUndefinedSymbols()
	if len(undefined) != 1 || undefined[0].Name != "missing" {
		t.Errorf("expected missing to be undefined, got %+v", undefined)
	}
}

func TestXRef_UnusedSymbol(t *testing.T) {
	source := `
_start:	halt
unused:	addi x5, x0, 1
	`

	gen := NewXRefGenerator()
	gen.Generate(source)

	unused := gen.GetUnusedSymbols()
	if len(unused) != 1 || unused[0].Name != "unused" {
		t.Errorf("expected unused to be flagged, got %+v", unused)
	}
}

func TestXRef_LoadAddressReference(t *testing.T) {
	source := `
_start:	la x5, buf
		halt
buf:	.word 0
	`

	symbols := NewXRefGenerator().Generate(source)

	buf, ok := symbols["buf"]
	if !ok {
		t.Fatal("expected buf symbol")
	}
	if len(buf.References) != 1 || buf.References[0].Type != RefLoad {
		t.Errorf("expected one load reference to buf, got %+v", buf.References)
	}
}

func TestGenerateXRef_ReportContainsSummary(t *testing.T) {
	report := GenerateXRef(`
_start:	halt
	`)

	if !strings.Contains(report, "Summary") {
		t.Errorf("expected report to contain a Summary section, got %q", report)
	}
}
