package config

// SourceTreeExtensions are the recognized serialized source tree extensions.
var SourceTreeExtensions = []string{".yaml", ".yml", ".json"}

// IsTestMode indicates if the program is running under go test.
var IsTestMode = false

// Reserved target names
const (
	ThisName       = "__this"
	VPtrName       = "__vptr"
	VTableName     = "__vtable"
	ClassFuncName  = "__class"
	IsaSlotName    = "__isa"
	DeleteSlotName = "__delete"
	InitName       = "init"
	MainName       = "main"
	MethodPrefix   = "m_"
)

// Entry point argument names
const (
	ArgsName    = "args"
	ArgvName    = "argv"
	ArgcName    = "argc"
	ArgvPtrName = "argvPtr"
	LengthName  = "length"
)

// Built-in class names
const (
	RootClassName   = "Object"
	StringClassName = "String"
	ClassClassName  = "Class"
)

// Console output recognition
const (
	ConsoleClass    = "System"
	ConsoleField    = "out"
	PrintName       = "print"
	PrintlnName     = "println"
	StreamName      = "std::cout"
	EndLineName     = "std::endl"
	SuperCallName   = "super"
	SuperCallMangle = "m_super"
)

// Target file layout
const (
	HeaderExt         = ".h"
	SourceExt         = ".cc"
	EntryFileName     = "main.cc"
	DefaultNamespace  = "oop"
	DefaultScriptName = "CompileRecentTest.sh"
	DefaultCompiler   = "g++ -std=c++11"
	DefaultRuntimeH   = "java_lang.h"
	DefaultRuntimeCC  = "java_lang.cc"
)

// RuntimeABIConstraint is the range of runtime-support versions the
// emitted code links against.
const RuntimeABIConstraint = "^2.0.0"

// DefaultRuntimeVersion is assumed when the configuration names none.
const DefaultRuntimeVersion = "2.0.0"

// ConfigFileNames are searched for, in order, in each directory.
var ConfigFileNames = []string{"cpptrans.yaml", "cpptrans.yml"}
