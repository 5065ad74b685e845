// Package fs provides the filesystem abstraction used by the local table store.
//
// The package defines two interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: filesystem operations (open, read, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects I/O errors and records writes
//
// Production code uses fs.Default:
//
//	data, err := fs.Default.ReadFile(path)
//
// Tests wrap the default with [FaultyFS] to count page writes or simulate
// failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("page", fs.Fault{FailOnSync: true})
//
// Operations take no context.Context. Local filesystem calls are short and
// cannot be interrupted at the syscall level; remote stores live in the
// storage package and do take a context.
package fs
