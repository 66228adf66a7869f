// Package hybrid implements the ai.Embedder interface against a hybrid
// embedding server.
//
// The server is expected to expose a single endpoint:
//
//	POST {host}/hybrid-embed
//	{"texts": ["..."]}
//	-> {"dense_vectors": [[...]], "sparse_vectors": [{"indices": [...], "values": [...]}]}
//
// Every call is a single attempt; failures are classified as
// core.ErrTransport (unreachable server, non-200 status) or
// core.ErrBackendProtocol (missing or mismatched vectors) and propagated.
package hybrid
