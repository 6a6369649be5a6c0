// Package batch is the per-frame instance diff engine shared by the
// renderers.
//
// Every frame a renderer groups its desired instances by resource key
// (mesh and texture for models, texture for sprites, a single key for
// lines) and hands the groups to Resident.Reconcile. Reconcile reuses the
// GPU buffer of every key that was already resident, creates buffers for
// new keys and releases the buffers of keys that disappeared. Buffer
// contents follow the InstanceBuffer.Update policy: overwrite when the data
// fits, reallocate to the exact size when it does not.
//
// Storage tracks the shared resources (meshes, textures) referenced by the
// instances, keeping each one only while some instance uses it.
package batch
