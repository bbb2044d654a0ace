package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"go.senan.xyz/taglib"
)

// bpmTag is the TagLib property key for tempo; the taglib package does not
// export a constant for it.
const bpmTag = "BPM"

// TaglibReader reads embedded tags through the taglib bindings.
type TaglibReader struct{}

// ReadTags reads the embedded tags and audio properties of an audio file.
// Fields that are missing or empty in the file are left at their zero value.
func (TaglibReader) ReadTags(path string) (Record, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	rec := Record{
		Title:  firstTag(tags, taglib.Title),
		Artist: firstTag(tags, taglib.Artist),
		Album:  firstTag(tags, taglib.Album),
		Year:   firstTag(tags, taglib.Date),
		Genre:  firstTag(tags, taglib.Genre),
	}

	if track := firstTag(tags, taglib.TrackNumber); track != "" {
		// ID3 allows "3/12"; keep only the track part.
		rec.TrackNum = strings.SplitN(track, "/", 2)[0]
	}
	if bpm := firstTag(tags, bpmTag); bpm != "" {
		if v, err := strconv.ParseFloat(bpm, 64); err == nil && v > 0 {
			rec.BPM = int(v)
		}
	}

	if props, err := taglib.ReadProperties(path); err == nil && props.Length > 0 {
		rec.Duration = props.Length.Seconds()
	}

	return rec, nil
}

// UnavailableTagReader is the default TagReader when no tag codec is
// usable. Every read reports failure so the pipeline falls through to the
// filename heuristic.
type UnavailableTagReader struct{}

func (UnavailableTagReader) ReadTags(path string) (Record, error) {
	return Record{}, fmt.Errorf("no tag reader available for %s", path)
}

// WriteTags writes the resolved metadata back into the audio file.
func WriteTags(path string, rec Record) error {
	tags := make(map[string][]string)

	if rec.Title != "" {
		tags[taglib.Title] = []string{rec.Title}
	}
	if rec.Artist != "" {
		tags[taglib.Artist] = []string{rec.Artist}
	}
	if rec.Album != "" {
		tags[taglib.Album] = []string{rec.Album}
	}
	if rec.Year != "" {
		tags[taglib.Date] = []string{rec.Year}
	}
	if rec.Genre != "" {
		tags[taglib.Genre] = []string{rec.Genre}
	}
	if rec.TrackNum != "" {
		tags[taglib.TrackNumber] = []string{rec.TrackNum}
	}
	if rec.BPM > 0 {
		tags[bpmTag] = []string{strconv.Itoa(rec.BPM)}
	}

	if len(tags) == 0 {
		return nil
	}
	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}
