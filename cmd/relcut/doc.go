// Package main hosts the relcut CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into release
// pipeline runs, changelog generation, documentation version rewrites, and
// release history queries. It centralizes configuration resolution,
// confirmation sources, and structured logging setup so subcommands can focus
// on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
