// Package model defines the persisted record shapes of a saved kernel model.
//
// A saved model is a sequence of records, one per line:
//
//	{"model_header":{"model_type":"kernel","dictionary":[...],"num_records":2}}
//	{"function_form":"rbf","weight_vector":[0.5,1],"scale":0.1,"feature_weight":2}
//	{"function_form":"linear","weight_vector":[1,0],"feature_weight":-1}
//
// The first record carries only ModelHeader; every following record describes
// one support vector. Records are plain data; encoding them is the job of a
// codec.Codec.
package model
