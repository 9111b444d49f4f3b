// Package core defines the shared language of the leapdb system.
//
// This package contains:
//   - Compiler output (CompiledSQL, Parameter, Expression)
//   - Execution contracts (Executor, Cursor, Row)
//   - Connection configuration (ConnectionConfig, PoolConfig)
//   - Placeholder styles shared by every dialect
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
