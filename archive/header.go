package archive

import "strconv"

// memberHeaderLen is the size of one archive member header: name(16)
// date(12) uid(6) gid(6) mode(8) size(10) end-marker(2).
const memberHeaderLen = 60

const maxMemberNameLen = 15

// truncateMemberName truncates name to the maximum length an archive
// short-name member header field can hold. Archive format, not this
// builder, imposes the limit, so truncation rather than an error matches
// what LIB.EXE itself does.
func truncateMemberName(name string) string {
	if len(name) > maxMemberNameLen {
		return name[:maxMemberNameLen]
	}
	return name
}

// memberHeader formats a 60-byte archive member header. name is written
// followed by a "/" terminator (the linker members pass "", which yields
// the name "/"); user members must already have been truncated to
// maxMemberNameLen.
func memberHeader(name string, size int) []byte {
	h := make([]byte, memberHeaderLen)
	for i := range h {
		h[i] = ' '
	}
	copy(h[0:16], name+"/")
	copy(h[16:28], "0")  // date
	copy(h[28:34], "0")  // uid
	copy(h[34:40], "0")  // gid
	copy(h[40:48], "0")  // mode
	copy(h[48:58], strconv.Itoa(size))
	h[58] = '`'
	h[59] = '\n'
	return h
}

// pad returns a single "\n" pad byte if n is odd, so that every archive
// member's payload lands on an even boundary, or nil if n is already even.
func pad(n int) []byte {
	if n%2 != 0 {
		return []byte{'\n'}
	}
	return nil
}
