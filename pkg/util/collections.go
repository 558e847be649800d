package util

func Map[A any, B any](coll []A, mapper func(A, uint64) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item, uint64(i))
	}
	return out
}

func Filter[A any](coll []A, keep func(A) bool) []A {
	out := make([]A, 0, len(coll))
	for _, item := range coll {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
