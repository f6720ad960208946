package taxonomy

// DefaultDefinition is the built-in taxonomy used when no taxonomy file is
// configured.
func DefaultDefinition() Definition {
	return Definition{Branches: []BranchDef{
		{
			Name: "Computer Science",
			Roles: []RoleDef{
				{
					Name:   "Software Engineer",
					Skills: []string{"python", "java", "data structures", "algorithms", "git", "sql", "oop"},
				},
				{
					Name:   "Data Scientist",
					Skills: []string{"python", "machine learning", "statistics", "pandas", "numpy", "sql"},
				},
			},
		},
		{
			Name: "Electronics",
			Roles: []RoleDef{
				{
					Name:   "Embedded Engineer",
					Skills: []string{"c", "c++", "microcontrollers", "embedded systems", "rtos"},
				},
			},
		},
	}}
}

// Default returns a freshly built copy of the built-in taxonomy.
func Default() *Taxonomy {
	return MustNew(DefaultDefinition())
}
