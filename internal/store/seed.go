package store

import "time"

// SampleArticles are two reports of the same story from outlets with
// different slants, used when no database is configured.
func SampleArticles() []Article {
	return []Article{
		{
			ID:    1,
			Title: "What to know about how the SAVE America Act could change voting",
			Content: "Ahead of the midterm elections, Republicans are again pushing for legislation that requires documentary proof of U.S. citizenship to vote. " +
				"The Save America Act is an expanded version of legislation that the House passed twice in as many years. It failed to clear the Senate in both cases. " +
				"Every version of the SAVE Act has had a common throughline: requiring Americans to provide proof of citizenship when registering to vote in federal elections. For most people, this would likely mean a passport or birth certificate. " +
				"The bill would also add criminal penalties for any election official who registers an applicant who fails to provide documentary proof of citizenship. " +
				"Orey said all of the bills under consideration are unfunded mandates that need time and resources to implement.",
			URL:         "https://www.pbs.org/newshour/politics/how-the-save-america-act-would-make-major-changes-to-voting",
			Source:      "NPR Politics",
			PublishedAt: time.Date(2026, 2, 18, 12, 30, 0, 0, time.UTC),
			Tags:        []string{"politics", "elections"},
		},
		{
			ID:    2,
			Title: "House passes SAVE Act to require voters to show ID",
			Content: "The House of Representatives narrowly passed the SAVE America Act on Wednesday, but it faces a tough sell in the Senate. " +
				"The House approved the measure by a vote of 218-213, with one Democrat voting in favor of the proposed law that would require voters to provide a birth certificate or passport to prove their citizenship status. " +
				"\"It's just common sense. Americans need an ID to drive, to open a bank account, to buy cold medicine and to file for government assistance,\" House Speaker Mike Johnson told media. " +
				"Democrats oppose the measure, which Senate Minority Leader Chuck Schumer called \"Jim Crow 2.0.\" " +
				"Although Senate Republicans have a simple majority in the upper chamber, they likely lack the 60 votes needed to overcome the filibuster.",
			URL:         "https://www.breitbart.com/news/house-passes-save-act-to-require-voters-to-show-id/",
			Source:      "Breitbart News",
			PublishedAt: time.Date(2026, 2, 18, 12, 45, 0, 0, time.UTC),
			Tags:        []string{"politics", "congress"},
		},
	}
}
