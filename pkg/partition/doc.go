/*
Package partition answers one question each coarse tick: can this node see
a majority of the cluster?

	total > 1 && floor(100*active/total) < 50  →  Flag.set = true

Nothing else in the daemon reads cluster membership for this purpose;
pkg/gc treats a set Flag as "abort this GC pass" and nothing more.
*/
package partition
