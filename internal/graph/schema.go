// FilePath: internal/graph/schema.go
package graph

import (
	"github.com/graphql-go/graphql"
)

// Schema builds the executable schema over this Graph's resolvers. The
// resolver map is transformed with the map-wide authorization default before
// any field is wired, so every listed resolver carries a policy.
func (g *Graph) Schema() (graphql.Schema, error) {
	resolvers := SetResolverDefault(g.resolvers())(AsUserOrAdmin)
	resolve := func(typeName, fieldName string) graphql.FieldResolveFn {
		return resolvers[typeName][fieldName].fn
	}

	thingStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name:        "ThingStatus",
		Description: "The connectivity status of a thing",
		Values: graphql.EnumValueConfigMap{
			"neverConnected": &graphql.EnumValueConfig{
				Value:       "neverConnected",
				Description: "The thing has never been seen",
			},
			"offline": &graphql.EnumValueConfig{
				Value:       "offline",
				Description: "The thing has been seen but has not communicated as recently as expected",
			},
			"online": &graphql.EnumValueConfig{
				Value:       "online",
				Description: "The thing has communicated recently as expected",
			},
		},
	})

	userTypeEnum := graphql.NewEnum(graphql.EnumConfig{
		Name:        "UserType",
		Description: "Type of a user",
		Values: graphql.EnumValueConfigMap{
			"admin": &graphql.EnumValueConfig{
				Value:       "admin",
				Description: "An administrator who can add/reset/remove users",
			},
			"user": &graphql.EnumValueConfig{
				Value:       "user",
				Description: "A regular user of the system",
			},
			"removed": &graphql.EnumValueConfig{
				Value:       "removed",
				Description: "A former user of the system",
			},
		},
	})

	ingestConfigurationInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "IngestConfigurationInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"ingest": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The name of the ingest the thing can send data via",
			},
			"ingestId": &graphql.InputObjectFieldConfig{
				Type:        graphql.String,
				Description: "(Optional) Overrides thingId as the Identifier of the thing for the ingest",
			},
			"configuration": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(JSONScalar),
				Description: "The network configuration of the new thing for the ingest",
			},
		},
	})

	thingInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "ThingInput",
		Description: "Description of a thing to create",
		Fields: graphql.InputObjectConfigFieldMap{
			"type": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The type of the new thing",
			},
			"ingests": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ingestConfigurationInput))),
				Description: "Ingest configuration for the new thing",
			},
			"metadata": &graphql.InputObjectFieldConfig{
				Type:        JSONScalar,
				Description: "Metadata for configuring the thing",
			},
		},
	})

	updateThingInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateThingInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"metadata": &graphql.InputObjectFieldConfig{
				Type:        JSONScalar,
				Description: "Metadata for configuring the thing",
			},
		},
	})

	datasetsFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "DatasetsFilterInput",
		Description: "Used to filter dataset types",
		Fields: graphql.InputObjectConfigFieldMap{
			"types": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "The types and labels of datasets to return",
			},
			"labels": &graphql.InputObjectFieldConfig{
				Type: graphql.NewList(graphql.NewNonNull(graphql.String)),
			},
		},
	})

	readingsFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "ReadingsFilterInput",
		Description: "Used to filter the reading ranges returned for a given dataset",
		Fields: graphql.InputObjectConfigFieldMap{
			"limit": &graphql.InputObjectFieldConfig{
				Type:         graphql.Int,
				DefaultValue: defaultReadingsLimit,
				Description:  "(Optional) limit on the number of results returned (maximum 100000)",
			},
			"startTimestamp": &graphql.InputObjectFieldConfig{
				Type:        DateScalar,
				Description: "(Optional) Includes only readings after this time (exclusive)",
			},
			"endTimestamp": &graphql.InputObjectFieldConfig{
				Type:        DateScalar,
				Description: "(Optional) Includes only readings before this time (inclusive)",
			},
		},
	})

	ingestConfigurationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "IngestConfiguration",
		Fields: graphql.Fields{
			"ingest": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The name of the ingest the thing can send data via",
			},
			"ingestId": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Identifier of the new thing for the ingest",
			},
			"configuration": &graphql.Field{
				Type:        graphql.NewNonNull(JSONScalar),
				Description: "The network configuration of the new thing for the ingest",
			},
		},
	})

	thingType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Thing",
		Description: "A generic IoT Thing",
		Fields: graphql.Fields{
			"uuid": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The identifier for the thing",
				Resolve:     resolve("Thing", "uuid"),
			},
			"type": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The type of thing",
			},
			"ingests": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ingestConfigurationType))),
				Description: "The ingest configuration for the thing",
				Resolve:     resolve("Thing", "ingests"),
			},
			"status": &graphql.Field{
				Type:        graphql.NewNonNull(thingStatusEnum),
				Description: "The connectivity status of the thing",
				Resolve:     resolve("Thing", "status"),
			},
		},
	})

	readingType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Reading",
		Description: "Represent a value of a dataset made at a specific timestamp",
		Fields: graphql.Fields{
			"timestamp": &graphql.Field{
				Type:        graphql.NewNonNull(DateScalar),
				Description: "The timestamp the reading was made at",
			},
			"value": &graphql.Field{
				Type:        graphql.Float,
				Description: "The value associated with the reading",
			},
			"thing": &graphql.Field{
				Type:        graphql.NewNonNull(thingType),
				Description: "The thing that generated this reading",
				Resolve:     resolve("Reading", "thing"),
			},
		},
	})

	readingsFilterArgs := graphql.FieldConfigArgument{
		"filter": &graphql.ArgumentConfig{
			Type:         graphql.NewNonNull(readingsFilterInput),
			DefaultValue: map[string]interface{}{},
			Description:  "(Optional) filter for readings",
		},
	}

	thingDatasetType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "ThingDataset",
		Description: "A dataset for a thing",
		Fields: graphql.Fields{
			"thing": &graphql.Field{
				Type:        graphql.NewNonNull(thingType),
				Description: "thing that the dataset is associated with",
				Resolve:     resolve("ThingDataset", "thing"),
			},
			"type": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The type of the measurement in the dataset (e.g. temperature)",
			},
			"label": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "A label describing the semantic meaning of the dataset (e.g. air_temperature)",
			},
			"readings": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(readingType))),
				Description: "The readings for this dataset",
				Args:        readingsFilterArgs,
				Resolve:     resolve("ThingDataset", "readings"),
			},
			"count": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "The readings count for this dataset",
				Args:        readingsFilterArgs,
				Resolve:     resolve("ThingDataset", "count"),
			},
		},
	})

	// datasets closes the Thing <-> ThingDataset cycle, so it is attached
	// after both types exist
	thingType.AddFieldConfig("datasets", &graphql.Field{
		Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(thingDatasetType))),
		Description: "Time series datasets measured from this thing",
		Args: graphql.FieldConfigArgument{
			"filter": &graphql.ArgumentConfig{
				Type:        datasetsFilterInput,
				Description: "(Optional) filter for datasets",
			},
		},
		Resolve: resolve("Thing", "datasets"),
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "User",
		Description: "A user",
		Fields: graphql.Fields{
			"username": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The unique username of the user",
				Resolve:     resolve("User", "username"),
			},
			"type": &graphql.Field{
				Type:        graphql.NewNonNull(userTypeEnum),
				Description: "Type of the user",
				Resolve:     resolve("User", "type"),
			},
			"createdAt": &graphql.Field{
				Type:        graphql.NewNonNull(DateScalar),
				Description: "Timestamp at which the user was created",
				Resolve:     resolve("User", "createdAt"),
			},
		},
	})

	// createdBy is self-referential
	userType.AddFieldConfig("createdBy", &graphql.Field{
		Type:        graphql.NewNonNull(userType),
		Description: "The user that created this user",
		Resolve:     resolve("User", "createdBy"),
	})

	newUserType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "NewUser",
		Description: "A new user",
		Fields: graphql.Fields{
			"username": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The unique username of the user",
				Resolve:     resolve("NewUser", "username"),
			},
			"type": &graphql.Field{
				Type:        graphql.NewNonNull(userTypeEnum),
				Description: "Type of the user",
				Resolve:     resolve("NewUser", "type"),
			},
			"createdAt": &graphql.Field{
				Type:        graphql.NewNonNull(DateScalar),
				Description: "Timestamp at which the user was created",
				Resolve:     resolve("NewUser", "createdAt"),
			},
			"password": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The password for the new user",
			},
			"createdBy": &graphql.Field{
				Type:        graphql.NewNonNull(userType),
				Description: "The user that created this user",
				Resolve:     resolve("NewUser", "createdBy"),
			},
		},
	})

	jwtType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "JWT",
		Description: "Javascript Web Token",
		Fields: graphql.Fields{
			"expires": &graphql.Field{Type: graphql.NewNonNull(DateScalar)},
			"token":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	updatedAtType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UpdatedAt",
		Fields: graphql.Fields{
			"region":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"type":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"timestamp": &graphql.Field{Type: graphql.NewNonNull(DateScalar)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"thing": &graphql.Field{
				Type:        thingType,
				Description: "Get a single thing identified by the provided uuid",
				Args: graphql.FieldConfigArgument{
					"uuid": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "The identifier of the desired thing",
					},
				},
				Resolve: resolve("Query", "thing"),
			},
			"things": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(thingType))),
				Description: "Get things in the system",
				Resolve:     resolve("Query", "things"),
			},
			"user": &graphql.Field{
				Type:        graphql.NewNonNull(userType),
				Description: "Get the currently authenticated user",
				Resolve:     resolve("Query", "user"),
			},
			"users": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Description: "Get users in the system. (Admin only)",
				Resolve:     resolve("Query", "users"),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createThing": &graphql.Field{
				Type:        graphql.NewNonNull(thingType),
				Description: "Register a new thing to the system",
				Args: graphql.FieldConfigArgument{
					"thing": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(thingInput),
						Description: "The description of the thing to be created",
					},
				},
				Resolve: resolve("Mutation", "createThing"),
			},
			"updateThing": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Updates the metadata of a thing in the system",
				Args: graphql.FieldConfigArgument{
					"uuid": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "The identifier of the thing to update",
					},
					"thing": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(updateThingInput),
						Description: "Description of the update to the thing",
					},
				},
				Resolve: resolve("Mutation", "updateThing"),
			},
			"createUser": &graphql.Field{
				Type:        graphql.NewNonNull(newUserType),
				Description: "Register a new user to the system (Admin only)",
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "The username of the new user",
					},
					"isAdmin": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.Boolean),
						Description: "Whether the new user should also be an Admin user",
					},
				},
				Resolve: resolve("Mutation", "createUser"),
			},
			"updateUserPassword": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Updates the password of the currently authenticated user",
				Args: graphql.FieldConfigArgument{
					"password": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "The current user's new password",
					},
				},
				Resolve: resolve("Mutation", "updateUserPassword"),
			},
			"resetUserPassword": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Reset the specified users password. (Admin only)",
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "The username of the user to reset",
					},
				},
				Resolve: resolve("Mutation", "resetUserPassword"),
			},
			"updateUserType": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Update the type of the specified user. Can be used to change the user type to/from admin and to remove a user (Admin only)",
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "The username of the target user",
					},
					"type": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(userTypeEnum),
						Description: "The type to set the target user to",
					},
				},
				Resolve: resolve("Mutation", "updateUserType"),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
		Types:    []graphql.Type{jwtType, updatedAtType},
	})
}
