// Package routing provides the keyspace math consumed by the proxy
// layer around the codec: the 16384-slot cluster partitioning scheme
// and a rendezvous-hash backend picker for non-cluster deployments.
//
// The package is deliberately small. Request rewriting, topology
// discovery and connection pooling belong to the surrounding proxy.
package routing
