/*
Package types defines the record shapes shared by every other package in
this module: the server and container rows read from and written to the
replicated store, and the in-memory peer view rebuilt from the mesh control
plane each tick.

There is no cluster-topology type here and no pointer graph between
entities. Servers, containers, and peers reference one another only by
ID or public key; every join happens at query time in the package that
needs it (pkg/reconciler, pkg/health, pkg/gc).
*/
package types
