package octosql

import (
	"fmt"
	"strings"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDInt
	TypeIDFloat
	TypeIDBoolean
	TypeIDString
	TypeIDTime
	TypeIDList
	TypeIDUnion
	TypeIDAny
)

func (id TypeID) String() string {
	switch id {
	case TypeIDNull:
		return "NULL"
	case TypeIDInt:
		return "Int"
	case TypeIDFloat:
		return "Float"
	case TypeIDBoolean:
		return "Boolean"
	case TypeIDString:
		return "String"
	case TypeIDTime:
		return "Time"
	case TypeIDList:
		return "List"
	case TypeIDUnion:
		return "Union"
	case TypeIDAny:
		return "Any"
	}
	return "Unknown"
}

type Type struct {
	TypeID TypeID
	List   struct {
		Element *Type
	}
	Union struct {
		Alternatives []Type
	}
}

type TypeRelation int

const (
	TypeRelationIsnt TypeRelation = iota
	TypeRelationMaybe
	TypeRelationIs
)

func (t Type) Is(other Type) TypeRelation {
	if other.TypeID == TypeIDAny {
		return TypeRelationIs
	}
	if t.TypeID == TypeIDUnion {
		anyFits := false
		allFit := true
		for _, alternative := range t.Union.Alternatives {
			rel := alternative.Is(other)
			if rel == TypeRelationIs {
				anyFits = true
			} else if rel == TypeRelationMaybe {
				anyFits = true
				allFit = false
			} else {
				allFit = false
			}
		}
		if allFit {
			return TypeRelationIs
		} else if anyFits {
			return TypeRelationMaybe
		} else {
			return TypeRelationIsnt
		}
	}
	if other.TypeID == TypeIDUnion {
		out := TypeRelationIsnt
		for _, alternative := range other.Union.Alternatives {
			rel := t.Is(alternative)
			if rel > out {
				out = rel
			}
		}
		return out
	}
	if t.TypeID == TypeIDList {
		if other.TypeID != TypeIDList {
			return TypeRelationIsnt
		}
		if t.List.Element == nil || other.List.Element == nil {
			return TypeRelationIs
		}
		if t.List.Element.Is(*other.List.Element) < TypeRelationIs {
			return TypeRelationIsnt
		}
		return TypeRelationIs
	}
	if t.TypeID == other.TypeID {
		return TypeRelationIs
	}
	return TypeRelationIsnt
}

// Primitive returns the single non-null alternative of a nullable type.
// Types which aren't a union of one type and NULL are returned unchanged.
func (t Type) Primitive() Type {
	if t.TypeID != TypeIDUnion {
		return t
	}
	var nonNull []Type
	for _, alternative := range t.Union.Alternatives {
		if alternative.TypeID != TypeIDNull {
			nonNull = append(nonNull, alternative)
		}
	}
	if len(nonNull) == 1 {
		return nonNull[0]
	}
	return t
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDList:
		if t.List.Element == nil {
			return "[Any]"
		}
		return fmt.Sprintf("[%s]", *t.List.Element)
	case TypeIDUnion:
		typeStrings := make([]string, len(t.Union.Alternatives))
		for i, alternative := range t.Union.Alternatives {
			typeStrings[i] = alternative.String()
		}

		return strings.Join(typeStrings, " | ")
	case TypeIDNull, TypeIDInt, TypeIDFloat, TypeIDBoolean, TypeIDString, TypeIDTime, TypeIDAny:
		return t.TypeID.String()
	}
	panic("impossible, type switch bug")
}

var (
	Null    = Type{TypeID: TypeIDNull}
	Int     = Type{TypeID: TypeIDInt}
	Float   = Type{TypeID: TypeIDFloat}
	Boolean = Type{TypeID: TypeIDBoolean}
	String  = Type{TypeID: TypeIDString}
	Time    = Type{TypeID: TypeIDTime}
	Any     = Type{TypeID: TypeIDAny}
)

func ListOf(element Type) Type {
	out := Type{TypeID: TypeIDList}
	out.List.Element = &element
	return out
}

func TypeSum(t1, t2 Type) Type {
	if t1.Is(t2) == TypeRelationIs {
		return t2
	}
	if t2.Is(t1) == TypeRelationIs {
		return t1
	}
	var alternatives []Type
	addType := func(t Type) {
		if t.Is(Type{
			TypeID: TypeIDUnion,
			Union:  struct{ Alternatives []Type }{Alternatives: alternatives},
		}) != TypeRelationIs {
			alternatives = append(alternatives, t)
		}
	}
	if t1.TypeID != TypeIDUnion {
		addType(t1)
	} else {
		for _, alternative := range t1.Union.Alternatives {
			addType(alternative)
		}
	}
	if t2.TypeID != TypeIDUnion {
		addType(t2)
	} else {
		for _, alternative := range t2.Union.Alternatives {
			addType(alternative)
		}
	}
	if len(alternatives) == 1 {
		return alternatives[0]
	}
	return Type{
		TypeID: TypeIDUnion,
		Union:  struct{ Alternatives []Type }{Alternatives: alternatives},
	}
}
