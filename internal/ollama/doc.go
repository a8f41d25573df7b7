// SPDX-License-Identifier: MPL-2.0

// Package ollama makes the local Ollama installation ready for the
// application: it locates the executable, brings the HTTP service up
// when it is not answering, and makes sure the configured model is
// installed, pulling it when necessary.
//
// The service is an opaque collaborator. Everything here talks to it
// the way any other client would — the /api/tags endpoint for liveness
// and model listing, the ollama CLI for serve and pull.
package ollama
