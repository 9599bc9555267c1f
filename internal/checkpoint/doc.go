// Package checkpoint saves and restores training state.
//
// A checkpoint holds the model parameters, the optimizer buffers and a little
// training progress. It is encoded as:
//
//	Format Structure:
//	  [4 bytes: Magic "NDGC"]
//	  [4 bytes: Version (uint32 LE)]
//	  [payload: protobuf wire-format Checkpoint message]
//	  [32 bytes: SHA-256 of the payload]
//
// The payload follows this message layout:
//
//	message Checkpoint {
//	  uint64 epoch = 1;
//	  double loss = 2;
//	  repeated Tensor model = 3;
//	  repeated Tensor optimizer = 4;
//	}
//	message Tensor {
//	  string name = 1;
//	  repeated uint64 shape = 2 [packed = true];
//	  repeated double data = 3 [packed = true];
//	}
//
// Encoded checkpoints are written to a Store: a local directory (FileStore)
// or a Google Cloud Storage bucket (GCSStore).
//
// Example usage:
//
//	state := checkpoint.State{Epoch: 10, Loss: loss, Model: model.StateDict()}
//	if err := checkpoint.Save(ctx, store, "mlp", state); err != nil {
//	    return err
//	}
//
//	restored, err := checkpoint.Load(ctx, store, "mlp")
//	if err != nil {
//	    return err
//	}
//	err = model.LoadStateDict(restored.Model)
package checkpoint
