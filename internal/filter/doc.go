// Package filter implements the HDF5 filter pipeline for data compression
// and decompression.
//
// HDF5 uses filters to compress and transform chunked data. When reading,
// filters are applied in reverse order to decode the data; when writing,
// in forward order to encode it. Each chunk can have a filter mask that
// allows skipping specific filters.
//
// # Supported Filters
//
// This package implements the following HDF5 filters:
//
//   - DEFLATE (ID 1): Zlib/gzip compression via [Deflate].
//
//   - Shuffle (ID 2): Byte shuffling via [Shuffle]. Rearranges bytes to
//     improve compression by grouping similar byte positions together
//     (e.g., all MSBs, then all second bytes, etc.).
//
//   - Fletcher32 (ID 3): Checksum validation via [Fletcher32Filter].
//     Verifies data integrity by checking a 32-bit Fletcher checksum
//     appended to the data.
//
//   - LZ4 (ID 32004): The registered LZ4 plugin filter via [LZ4], using
//     big-endian block framing over LZ4 block compression.
//
// # Unsupported Filters
//
// The following filters are recognized but not implemented:
//
//   - SZIP (ID 4): Proprietary compression algorithm
//   - N-bit (ID 5): Bit-level packing
//   - Scale-offset (ID 6): Integer scaling and offset
//
// Datasets using unsupported filters cannot be read. However, optional
// filters (marked in the filter pipeline) can be skipped if not available.
// Writing never skips a filter: an unsupported filter in an encode
// pipeline is an error.
//
// # Filter Pipeline
//
// The [Pipeline] type manages a sequence of filters for a dataset:
//
//	pipeline, err := filter.NewPipeline(filterPipelineMsg)
//	decodedData, err := pipeline.Decode(compressedData, filterMask)
//
// Filters are applied in reverse order during decoding. For example, if a
// dataset was written with filters [Shuffle, DEFLATE], decoding applies
// DEFLATE first (to decompress), then Shuffle (to unshuffle bytes).
// [NewEncodePipeline] builds the forward-order counterpart for writing.
//
// # Filter Mask
//
// Each chunk can have a filter mask that indicates which filters to skip.
// If bit i is set in the mask, filter i is skipped during decoding. This
// allows individual chunks to use different filter combinations.
package filter
