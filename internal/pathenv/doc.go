// SPDX-License-Identifier: MPL-2.0

// Package pathenv manages the persistent per-user PATH so a locally
// installed Ollama becomes resolvable for this run and every later one.
//
// The persistent store sits behind the two-operation Store interface
// from the start: the real implementation is the Windows registry
// (HKCU\Environment), other platforms get a store that politely refuses,
// and tests use MemStore. The Registrar layers the launcher's policy on
// top — check PATH, check the conventional install dir, append once,
// never abort the run over a denied write.
package pathenv
