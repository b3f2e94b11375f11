// Package sim owns an in-process dedicated-server host for save/load sessions.
//
// Ownership boundary:
// - console command parsing into a cvar table
// - the two registers and the commit side effect
// - round backup files on disk
// - the cycle clock (boundaries scheduled by commits and restores)
//
// Commits snapshot the registers at call time. A restore request is applied
// at the next boundary, before the cycle-start listener runs.
package sim
