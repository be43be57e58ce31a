// Package rpc contains everything that talks to the remote store.
//
// The package is organized into several subpackages:
//
//   - common: Client configuration and logging.
//
//   - transport: Connection management. The base package provides a transport
//     independent connection pool, resp creates connections that speak the
//     Redis protocol.
//
//   - serializer: Value serialization with multiple format options (Binary, JSON, GOB)
//     for converting session entries and cached responses to bytes.
//
//   - client: The Redis implementation of store.IStore and the process wide
//     shared connection.
package rpc
