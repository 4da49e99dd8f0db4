package emitter

import (
	"strings"

	"github.com/funvibe/cpptrans/internal/config"
)

// Entry renders the shared entry point. It includes every class header,
// wraps the process arguments in a managed String array and runs the
// statements of main. main is nil when no class declares one.
func Entry(main *ClassOutput, classNames []string, opts Options) string {
	p := NewCodePrinter()
	p.line("#include <iostream>")
	p.line("")
	p.line(`#include "` + opts.RuntimeHeader + `"`)
	for _, name := range classNames {
		p.line(`#include "` + name + config.HeaderExt + `"`)
	}
	p.line("")
	p.line("using namespace java::lang;")
	p.line("using namespace " + opts.Namespace + ";")
	p.line("")

	p.open("int main(int " + config.ArgcName + ", char* " + config.ArgvName + "[])")
	if main == nil || !main.HasMain {
		p.line("return 0;")
		p.close("")
		return p.String()
	}
	args := "__rt::Ptr<__rt::Array<String> > " + config.ArgvPtrName
	p.line(args + " = new __rt::Array<String>(" + config.ArgcName + " - 1);")
	p.open("for (int32_t i = 1; i < " + config.ArgcName + "; i++)")
	p.line("(*" + config.ArgvPtrName + ")[i - 1] = __rt::literal(" + config.ArgvName + "[i]);")
	p.close("")
	p.write(main.Entry)
	p.close("")
	return p.String()
}

// Script renders the shell script that compiles every emitted unit
// together with the runtime.
func Script(opts Options, classNames []string) string {
	units := []string{config.EntryFileName, opts.RuntimeSource}
	for _, name := range classNames {
		units = append(units, name+config.SourceExt)
	}
	return "#!/bin/sh\n" + opts.Compiler + " " + strings.Join(units, " ") + "\n"
}
