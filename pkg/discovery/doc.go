/*
Package discovery resolves this server's public IP on a coarser cadence
than the main tick and republishes it when it changes.

	ifconfig.me ──✗
	icanhazip.com ──✓──▶ "2.2.2.2" ──▶ substring-present? ──▶ no-op
	                                          │
	                                          ▼ no
	                                 UPDATE servers SET endpoints

Only the transactional HTTP writer is used for the update, so the store's
subscription events (which drive DNS downstream) fire on change.
*/
package discovery
