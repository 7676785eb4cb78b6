package worker

import (
	"github.com/forgechain/forge/foundation/ledger/peer"
)

// peerOperations handles finding new peers and pulling longer chains on an
// interval or on demand.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.peerSync:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// Sync updates the peer list, the mempool and the chain. When a peer reports
// a longer chain, the full candidate is pulled and handed to the longest
// valid chain rule.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, peer := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(peer)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", peer.Host, err)
			w.state.RemoveKnownPeer(peer)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// Retrieve the mempool from the peer.
		pool, err := w.state.NetRequestPeerMempool(peer)
		if err != nil {
			w.evHandler("worker: sync: retrievePeerMempool: %s: ERROR: %s", peer.Host, err)
		}
		for _, tx := range pool {
			w.evHandler("worker: sync: retrievePeerMempool: %s: add tx: %s", peer.Host, tx)
			if err := w.state.UpsertNodeTransaction(tx); err != nil {
				w.evHandler("worker: sync: retrievePeerMempool: %s: WARNING: %s", peer.Host, err)
			}
		}

		// If this peer has a longer chain, pull the whole candidate and
		// apply the longest valid chain rule.
		if peerStatus.LatestBlockNumber > w.state.RetrieveLatestBlock().Header.Number {
			w.evHandler("worker: sync: synchronizeChain: %s: latestBlockNumber[%d]", peer.Host, peerStatus.LatestBlockNumber)

			candidate, err := w.state.NetRequestPeerChain(peer)
			if err != nil {
				w.evHandler("worker: sync: synchronizeChain: %s: ERROR: %s", peer.Host, err)
				continue
			}

			if err := w.state.SynchronizeChain(candidate); err != nil {
				w.evHandler("worker: sync: synchronizeChain: %s: ERROR: %s", peer.Host, err)
			}
		}
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in this nodes list of known peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: sync: addNewPeers: started")
	defer w.evHandler("worker: sync: addNewPeers: completed")

	for _, pr := range knownPeers {

		// Don't add this running node to the known peer list.
		if pr.Match(w.state.RetrieveHost()) {
			continue
		}

		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: sync: addNewPeers: adding peer-node %s", pr)
		}
	}
}
