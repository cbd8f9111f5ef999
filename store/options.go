package store

// Option - дополнительный параметр хранилища
type Option func(*options)

func getOpts(args []Option) (o options) {
	o.chunkSize = ChunkSize
	o.batch = 8

	for i := range args {
		args[i](&o)
	}
	return
}

type options struct {
	chunkSize int
	batch     int
}

// Chunk - размер куска файла, не больше ChunkSize
func Chunk(size int) Option {
	return func(o *options) {
		if size > 0 && size <= ChunkSize {
			o.chunkSize = size
		}
	}
}

// Batch - сколько кусков писать или читать в одной физической транзакции
func Batch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batch = n
		}
	}
}
