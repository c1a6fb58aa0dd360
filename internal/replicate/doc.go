// Package replicate applies a notification stream onto an independent
// forest that shares node identity with the producer.
//
// A Replicator is a terminal bus.Receiver. For every notification it
// resolves the involved nodes through its SharedNodeMap (falling back to the
// target forest, then to the subtree snapshot carried by the notification),
// checks that the target is in the state the notification describes, and
// calls the graph primitive of the same variant under Forest.Tagged so the
// target re-emits it with the original id. Anything it cannot apply
// consistently is a ReplicationDivergence returned to the sender.
package replicate
