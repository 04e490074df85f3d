package batidiff

// SourceTag holds the provenance of a building, it survives a
// MODIFIED carry-over.
const SourceTag = "source"

type Tag struct {
	Key   string
	Value string
}

// Tags keeps insertion order so that written files stay stable.
type Tags []Tag

func (t Tags) Get(key string) (string, bool) {
	for _, e := range t {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

func (t *Tags) Set(key, value string) {
	for i, e := range *t {
		if e.Key == key {
			(*t)[i].Value = value
			return
		}
	}
	*t = append(*t, Tag{Key: key, Value: value})
}

func (t *Tags) Delete(key string) {
	for i, e := range *t {
		if e.Key == key {
			*t = append((*t)[:i], (*t)[i+1:]...)
			return
		}
	}
}

func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	c := make(Tags, len(t))
	copy(c, t)
	return c
}

func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, e := range t {
		m[e.Key] = e.Value
	}
	return m
}

// CopyTags migrates the tags of a matched old building onto a new one.
//
// UNCHANGED takes every tag of the old building. MODIFIED does the same but
// keeps the source the new building was read with, as long as the old
// building has one to overwrite it with. Any other status is a no-op.
func CopyTags(dst, src *Building, status Status) {
	switch status {
	case StatusUnchanged, StatusModified:
		if !dst.carried {
			dst.readTags = dst.Tags.Clone()
			dst.carried = true
		}
	}

	switch status {
	case StatusUnchanged:
		dst.Tags = src.Tags.Clone()
	case StatusModified:
		dst.Tags = src.Tags.Clone()
		if _, ok := src.Tags.Get(SourceTag); ok && dst.hasSource {
			dst.Tags.Set(SourceTag, dst.observedSource)
		}
	}
}
