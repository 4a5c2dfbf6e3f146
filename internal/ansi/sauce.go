package ansi

import (
	"bytes"
	"encoding/binary"
)

const (
	sauceRecordLen  = 128
	sauceCommentLen = 64
	eofMarker       = 0x1a
)

var (
	sauceID   = []byte("SAUCE")
	commentID = []byte("COMNT")
)

// SAUCE is the metadata record art editors append to .ans and .asc files.
type SAUCE struct {
	Title    string
	Author   string
	Group    string
	Date     string // CCYYMMDD
	Columns  int
	Lines    int
	Comments []string
}

// Width returns the art width in columns, 80 when unset.
func (s *SAUCE) Width() int {
	if s.Columns > 0 {
		return s.Columns
	}
	return 80
}

// ParseSAUCE splits a trailing SAUCE record, its optional comment block and
// the EOF marker from data. It returns nil and data unchanged when there is
// no record.
func ParseSAUCE(data []byte) (*SAUCE, []byte) {
	if len(data) < sauceRecordLen {
		return nil, data
	}
	end := len(data) - sauceRecordLen
	rec := data[end:]
	if !bytes.Equal(rec[:5], sauceID) {
		return nil, data
	}

	s := &SAUCE{
		Title:   field(rec[7:42]),
		Author:  field(rec[42:62]),
		Group:   field(rec[62:82]),
		Date:    field(rec[82:90]),
		Columns: int(binary.LittleEndian.Uint16(rec[96:98])),
		Lines:   int(binary.LittleEndian.Uint16(rec[98:100])),
	}

	if n := int(rec[104]); n > 0 {
		start := end - len(commentID) - n*sauceCommentLen
		if start >= 0 && bytes.Equal(data[start:start+len(commentID)], commentID) {
			block := data[start+len(commentID) : end]
			for i := 0; i < n; i++ {
				s.Comments = append(s.Comments, field(block[i*sauceCommentLen:(i+1)*sauceCommentLen]))
			}
			end = start
		}
	}

	if end > 0 && data[end-1] == eofMarker {
		end--
	}
	return s, data[:end]
}

func field(b []byte) string {
	return string(bytes.TrimRight(b, "\x00 "))
}
