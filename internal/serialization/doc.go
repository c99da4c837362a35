// Package serialization saves and loads network weights in the .mlp format.
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 magic "MLPW"
//	    0x04 version (uint32 LE)
//	    0x08 flags (uint32 LE)
//	    0x0C reserved
//	    0x10 JSON header size (uint64 LE)
//	    0x18 data size (uint64 LE)
//	    0x20 SHA-256 of the data section (32 bytes)
//	  [Header: JSON metadata]
//	  [Padding to a 64-byte boundary]
//	  [Tensor data: little-endian float32, used columns only, row major]
//
// Stride padding is never written; the reader rebuilds it for the lane width
// of the loading process, so files move freely between 8- and 16-lane hosts.
//
// Example usage:
//
//	meta := serialization.Meta{Training: &serialization.TrainingMeta{Epoch: 10}}
//	if err := serialization.Save("xor.mlp", arch, meta); err != nil {
//	    return err
//	}
//
//	arch, header, err := serialization.Load("xor.mlp", serialization.ReaderOptions{})
//	if err != nil {
//	    return err
//	}
//	defer arch.Release()
package serialization
