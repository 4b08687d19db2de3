// Package gnmi bridges yangcontext data nodes to gNMI typed values so a
// telemetry server can serve the registry content directly.
package gnmi

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/neoul/yangcontext"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/openconfig/gnmi/value"
	"github.com/openconfig/goyang/pkg/yang"
)

// GetModuleData returns the gNMI ModelData of every implemented module of
// the context.
func GetModuleData(c *yangcontext.Context) []*gnmipb.ModelData {
	var modeldata []*gnmipb.ModelData
	cursor := 0
	for m := c.NextModule(&cursor); m != nil; m = c.NextModule(&cursor) {
		if !m.Implemented {
			continue
		}
		mdata := &gnmipb.ModelData{Name: m.Name, Version: m.Revision}
		if m.Mod.Organization != nil {
			mdata.Organization = m.Mod.Organization.Name
		}
		modeldata = append(modeldata, mdata)
	}
	sort.Slice(modeldata, func(i, j int) bool {
		return modeldata[i].Name < modeldata[j].Name
	})
	return modeldata
}

// ToTypedValue encodes a data node into a gNMI TypedValue message. Branch
// nodes become JSON_IETF objects; leaves convert by their scalar value.
func ToTypedValue(node yangcontext.DataNode, enc gnmipb.Encoding) (*gnmipb.TypedValue, error) {
	if node == nil || node.IsNil() {
		return nil, fmt.Errorf("no data node to convert")
	}
	if node.IsBranchNode() {
		switch enc {
		case gnmipb.Encoding_JSON, gnmipb.Encoding_JSON_IETF:
			jbytes, err := json.Marshal(toJSONValue(node))
			if err != nil {
				return nil, err
			}
			if enc == gnmipb.Encoding_JSON {
				return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_JsonVal{JsonVal: jbytes}}, nil
			}
			return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_JsonIetfVal{JsonIetfVal: jbytes}}, nil
		default:
			return nil, fmt.Errorf("typed value encoding %q not supported for branch nodes", enc)
		}
	}
	return value.FromScalar(scalarValue(node))
}

// scalarValue maps the stored leaf value to a scalar the gNMI value
// helper understands.
func scalarValue(node yangcontext.DataNode) interface{} {
	switch v := node.Value().(type) {
	case yang.Number:
		return v.String()
	case nil:
		return node.ValueString()
	default:
		return v
	}
}

// toJSONValue renders a subtree as generic JSON: containers become
// objects, lists and leaf-lists arrays, leaves their canonical values.
func toJSONValue(node yangcontext.DataNode) interface{} {
	if node.IsLeafNode() {
		return jsonLeafValue(node)
	}
	obj := map[string]interface{}{}
	for _, child := range node.Children() {
		name := child.Name()
		switch {
		case child.IsLeafList() || child.IsList():
			list, _ := obj[name].([]interface{})
			obj[name] = append(list, toJSONValue(child))
		default:
			obj[name] = toJSONValue(child)
		}
	}
	return obj
}

func jsonLeafValue(node yangcontext.DataNode) interface{} {
	switch v := node.Value().(type) {
	case int8, int16, int32, uint8, uint16, uint32, bool:
		return v
	case int64, uint64, yang.Number:
		// 64-bit numbers ride as strings per RFC 7951
		return node.ValueString()
	case nil:
		return []interface{}{nil}
	default:
		return node.ValueString()
	}
}
