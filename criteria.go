package rql

import (
	"reflect"

	"github.com/nlstn/go-rql/internal/criteria"
	"github.com/nlstn/go-rql/internal/rqlerr"
)

// Overpost records payload fields a criteria type does not declare. Embed it
// in a criteria struct and decode request bodies with DecodeCriteria;
// Builder.Introspect logs a warning for overposted criteria.
type Overpost = criteria.Overpost

// CriteriaDescriptor lists the criteria properties of a struct type. Each
// exported field is one criterion; the rql tag names the target field and
// operator:
//
//	type ProductCriteria struct {
//		rql.Overpost
//		Codes []int  `json:"codes" rql:"Code,op=in"`
//		Name  string `json:"name" rql:",op=startswith"`
//		Ages  [2]int `json:"ages" rql:"Age,op=between"`
//	}
//
// The operator defaults to eq for scalars and in for slices. Zero-valued
// properties contribute no predicate.
type CriteriaDescriptor = criteria.Descriptor

// DescribeCriteria returns the cached descriptor of c's struct type.
func DescribeCriteria(c interface{}) (*CriteriaDescriptor, error) {
	t := reflect.TypeOf(c)
	if t == nil {
		return nil, rqlerr.Usage("criteria cannot be nil")
	}
	d, err := criteria.DescriptorOf(t)
	if err != nil {
		return nil, rqlerr.Usage("%v", err)
	}
	return d, nil
}

// DecodeCriteria unmarshals a JSON payload into dst, a pointer to a criteria
// struct, and returns the payload keys dst does not declare. When dst embeds
// Overpost those keys are recorded there too.
func DecodeCriteria(data []byte, dst interface{}) ([]string, error) {
	return criteria.Decode(data, dst)
}
