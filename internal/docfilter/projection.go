package docfilter

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Projection includes the given document keys. No keys yields nil, meaning
// the whole document.
func Projection(keys []string) bson.D {
	if len(keys) == 0 {
		return nil
	}
	proj := make(bson.D, 0, len(keys))
	for _, k := range keys {
		proj = append(proj, bson.E{Key: k, Value: 1})
	}
	return proj
}

// ExtJSON renders a filter or projection as relaxed extended JSON.
func ExtJSON(doc bson.D) (string, error) {
	if doc == nil {
		doc = bson.D{}
	}
	out, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
