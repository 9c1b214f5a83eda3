package warcdebug

// cWindowSize is the rolling-sum window width SplitRsyncable uses to find
// content-dependent split points, mirroring "gzip --rsyncable"'s
// algorithm: a member boundary is placed wherever the sum of the last
// cWindowSize bytes is a multiple of cWindowSize, so a localized edit to
// the uncompressed input only perturbs the one gzip member straddling it
// instead of every member downstream of the edit.
const cWindowSize = 4096

// rsyncWindow carries the rolling-sum state across calls to the Splitter
// SplitRsyncable returns; a Splitter is called repeatedly with successive
// chunks of the same logical stream, so it needs somewhere to keep the
// window between calls.
type rsyncWindow struct {
	buf [cWindowSize]byte
	idx int
	sum int
}

// SplitRsyncable returns a Splitter that closes a member at
// content-dependent offsets instead of fixed ones, trading a slightly
// less predictable member size for a recompressed file that stays
// rsync-friendly when the source WARC is appended to or lightly edited.
// Unlike SplitByFixedBlock, the returned Splitter carries state between
// calls and so must not be shared between concurrent Recompress calls.
func SplitRsyncable() Splitter {
	w := &rsyncWindow{}
	return func(data []byte, memberOff int64) int {
		for i, b := range data {
			w.sum -= int(w.buf[w.idx%cWindowSize])
			w.buf[w.idx%cWindowSize] = b
			w.sum += int(b)
			w.idx++
			if w.idx >= cWindowSize && w.sum%cWindowSize == 0 {
				w.buf = [cWindowSize]byte{}
				w.idx = 0
				w.sum = 0
				return i + 1
			}
		}
		return len(data)
	}
}
