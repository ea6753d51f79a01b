// Package rigidscene binds scene nodes describing rigid bodies, joints,
// collidable geometry and collision spaces to a physics engine, and drives
// the engine through a fixed per-frame cycle.
//
// A frame runs in this order:
//
//	CollisionCollection.EvaluateCollisions  detect and stamp the contact policy
//	(caller edits the Contacts)             optional
//	RigidBodyCollection.ProcessInputContacts suppress every contact left out
//	RigidBodyCollection.EvaluateModel       push forces, step the world
//	RigidBodyCollection.UpdatePostSimulation read back and notify
//
// The Manager runs that cycle for every registered node. Nodes start in a
// setup phase during which field mutations are only stored; SetupFinished
// pushes them to the engine in one batch and enables change notification.
//
// The engine is reached only through the interfaces of package engine, so any
// backend can stand behind the binding. Package feather is the default one.
package rigidscene
