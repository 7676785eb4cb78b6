package chain

// Storage interface represents the behavior required to be implemented by
// any package providing support for reading and writing the chain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the blocks, starting with
// the genesis block.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}
